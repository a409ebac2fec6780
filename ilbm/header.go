package ilbm

import "encoding/binary"

// BitmapHeader is the contents of the BMHD chunk.
type BitmapHeader struct {
	Width            uint16
	Height           uint16
	XOrigin          int16
	YOrigin          int16
	Planes           uint8
	Masking          uint8
	Compression      uint8
	TransparentColor uint16
	XAspect          uint8
	YAspect          uint8
	PageWidth        int16
	PageHeight       int16
}

// parseHeader decodes a BMHD payload. Values are not validated; it only
// fails if p is too short to hold the fixed layout.
func parseHeader(p []byte) (BitmapHeader, bool) {
	if len(p) < bmhdSize {
		return BitmapHeader{}, false
	}

	// Byte 11 is padding
	return BitmapHeader{
		Width:            binary.BigEndian.Uint16(p[0:]),
		Height:           binary.BigEndian.Uint16(p[2:]),
		XOrigin:          int16(binary.BigEndian.Uint16(p[4:])),
		YOrigin:          int16(binary.BigEndian.Uint16(p[6:])),
		Planes:           p[8],
		Masking:          p[9],
		Compression:      p[10],
		TransparentColor: binary.BigEndian.Uint16(p[12:]),
		XAspect:          p[14],
		YAspect:          p[15],
		PageWidth:        int16(binary.BigEndian.Uint16(p[16:])),
		PageHeight:       int16(binary.BigEndian.Uint16(p[18:])),
	}, true
}

func (h BitmapHeader) hasMask() bool {
	return h.Masking == MaskHasMask
}
