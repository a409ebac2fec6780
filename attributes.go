package iffit

import "github.com/rcoenen/iffit/ilbm"

// Attributes is the searchable description of an image, the same set of
// attributes a desktop search importer would publish.
type Attributes struct {
	PixelWidth    int
	PixelHeight   int
	BitsPerSample int
	ColorSpace    string
	Title         string
	Authors       []string
	Copyright     string
	Comment       string
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// AttributesFrom maps image metadata onto Attributes. Absent text chunks
// leave the corresponding attribute empty.
func AttributesFrom(md *ilbm.Metadata) Attributes {
	a := Attributes{
		PixelWidth:    int(md.Width),
		PixelHeight:   int(md.Height),
		BitsPerSample: md.BitsPerSample(),
		ColorSpace:    md.ColorMode(),
		Title:         deref(md.Name),
		Copyright:     deref(md.Copyright),
		Comment:       deref(md.Annotation),
	}
	if md.Author != nil {
		a.Authors = []string{*md.Author}
	}
	return a
}
