package ilbm

import (
	"encoding/binary"
	"image"
	"image/color"
	"io"
)

// Image is a decoded image as 8-bit RGBA with straight alpha. Rows are
// Width*4 bytes with no padding.
type Image struct {
	Width  uint32
	Height uint32
	Pix    []byte
}

// Stride returns the length of one row of Pix in bytes.
func (m *Image) Stride() int {
	return int(m.Width) * 4
}

// NRGBA returns m as an *image.NRGBA sharing the same pixels.
func (m *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    m.Pix,
		Stride: m.Stride(),
		Rect:   image.Rect(0, 0, int(m.Width), int(m.Height)),
	}
}

type decoder struct {
	pbm       bool
	header    BitmapHeader
	hasHeader bool
	cmap      []byte
	camg      uint32
	body      []byte

	mode    Mode
	palette Palette
	image   *Image
}

// readChunks walks the container and records the chunks needed for
// decoding. Later chunks replace earlier ones with the same tag.
func (d *decoder) readChunks(data []byte) error {
	w, err := NewWalker(data)
	if err != nil {
		return err
	}
	d.pbm = w.IsPBM()

	for w.Next() {
		c := w.Chunk()
		switch c.ID {
		case tagBMHD:
			if h, ok := parseHeader(c.Data); ok {
				d.header, d.hasHeader = h, true
			}
		case tagCMAP:
			d.cmap = c.Data
		case tagCAMG:
			if len(c.Data) >= 4 {
				d.camg = binary.BigEndian.Uint32(c.Data)
			}
		case tagBODY:
			d.body = c.Data
		}
	}

	if !d.hasHeader {
		return ErrMissingHeader
	}

	return nil
}

func (d *decoder) decode(data []byte, configOnly bool) error {
	if err := d.readChunks(data); err != nil {
		return err
	}

	if configOnly {
		return nil
	}

	if len(d.body) == 0 {
		return ErrMissingBody
	}

	body := d.body
	switch d.header.Compression {
	case CompressionNone:
	case CompressionByteRun1:
		body = Decompress(body, min(d.expectedBodySize(), len(body)*maxExpansion))
	default:
		return UnsupportedCompressionError(d.header.Compression)
	}

	d.mode = ResolveMode(d.pbm, d.header, d.camg)
	d.palette = BuildPalette(d.cmap, d.camg, d.header.Planes)

	width, height := uint32(d.header.Width), uint32(d.header.Height)
	pix := d.mode.decode(body, d.header, d.palette)

	if width == 0 || height == 0 || len(pix) != int(width)*int(height)*4 {
		return ErrDecodingFailed
	}

	d.image = &Image{
		Width:  width,
		Height: height,
		Pix:    pix,
	}

	return nil
}

// expectedBodySize returns the uncompressed body size implied by the
// header.
func (d *decoder) expectedBodySize() int {
	width, height := int(d.header.Width), int(d.header.Height)
	if d.pbm {
		return (width + 1) / 2 * 2 * height
	}
	planes := int(d.header.Planes)
	if d.header.hasMask() {
		planes++
	}
	return planeRowBytes(width) * planes * height
}

// Parse decodes a complete IFF ILBM or PBM file held in data.
func Parse(data []byte) (*Image, error) {
	var d decoder
	if err := d.decode(data, false); err != nil {
		return nil, err
	}
	return d.image, nil
}

// Decode reads an IFF ILBM or PBM image from r and returns it as an
// *image.NRGBA.
func Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return m.NRGBA(), nil
}

// DecodeConfig returns the color model and dimensions of an IFF ILBM or PBM
// image without decoding the body.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return image.Config{}, err
	}
	var d decoder
	if err := d.decode(data, true); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(d.header.Width),
		Height:     int(d.header.Height),
	}, nil
}

func init() {
	image.RegisterFormat("ilbm", "FORM????ILBM", Decode, DecodeConfig)
	image.RegisterFormat("pbm", "FORM????PBM ", Decode, DecodeConfig)
}
