package ilbm

import (
	"bytes"
	"encoding/binary"

	"golang.org/x/text/encoding/charmap"
)

// Metadata is the descriptive information of an IFF image, available
// without decoding the body.
type Metadata struct {
	Width       uint16
	Height      uint16
	Planes      uint8
	Compression uint8
	CAMG        uint32
	// PaletteColors is the number of entries in the CMAP chunk as stored.
	PaletteColors int
	XAspect       uint8
	YAspect       uint8

	Name       *string
	Author     *string
	Copyright  *string
	Annotation *string

	// Truncated is set when the file ended partway through a chunk.
	Truncated bool
}

// ColorMode returns a human readable label for the color encoding.
func (m *Metadata) ColorMode() string {
	switch {
	case m.Planes == direct32Planes:
		return "Direct 32-bit"
	case m.Planes == direct24Planes:
		return "Direct 24-bit"
	case m.CAMG&CAMGHAM != 0:
		if m.Planes <= 6 {
			return "HAM6"
		}
		return "HAM8"
	case m.CAMG&CAMGEHB != 0:
		return "EHB"
	default:
		return "Indexed"
	}
}

// BitsPerSample returns the plane count, which is what indexers report as
// the bit depth regardless of the actual per-channel depth.
func (m *Metadata) BitsPerSample() int {
	return int(m.Planes)
}

// readText decodes a text chunk as Latin-1, stopping at the first NUL.
func readText(p []byte) *string {
	if len(p) == 0 {
		return nil
	}
	if i := bytes.IndexByte(p, 0); i >= 0 {
		p = p[:i]
	}
	b, err := charmap.ISO8859_1.NewDecoder().Bytes(p)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

// ParseMetadata reads the header and text chunks of an IFF ILBM or PBM file
// held in data. The body is never examined.
func ParseMetadata(data []byte) (*Metadata, error) {
	w, err := NewWalker(data)
	if err != nil {
		return nil, err
	}

	var (
		m         Metadata
		hasHeader bool
	)

	for w.Next() {
		c := w.Chunk()
		switch c.ID {
		case tagBMHD:
			h, ok := parseHeader(c.Data)
			if !ok {
				continue
			}
			hasHeader = true
			m.Width, m.Height = h.Width, h.Height
			m.Planes = h.Planes
			m.Compression = h.Compression
			m.XAspect, m.YAspect = h.XAspect, h.YAspect
		case tagCMAP:
			m.PaletteColors = len(c.Data) / 3
		case tagCAMG:
			if len(c.Data) >= 4 {
				m.CAMG = binary.BigEndian.Uint32(c.Data)
			}
		case tagNAME:
			m.Name = readText(c.Data)
		case tagAUTH:
			m.Author = readText(c.Data)
		case tagCOPY:
			m.Copyright = readText(c.Data)
		case tagANNO:
			m.Annotation = readText(c.Data)
		}
	}
	m.Truncated = w.Truncated()

	if !hasHeader {
		return nil, ErrMissingHeader
	}

	return &m, nil
}
