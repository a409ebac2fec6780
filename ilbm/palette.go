package ilbm

import "image/color"

const (
	maxPaletteBits = 8
	ehbPlanes      = 6
	ehbBaseColors  = 32
)

// RGB is a single palette entry.
type RGB struct {
	R, G, B uint8
}

// Palette is an ordered list of colors indexed by pixel value.
type Palette []RGB

// BuildPalette builds the palette for an image with the given number of
// planes from the raw CMAP payload, which may be nil. The result always has
// 1<<min(planes, 8) entries, missing entries are black. For a 6 plane image
// with the EHB flag set the result has 64 entries, the upper 32 being the
// lower 32 at half brightness.
func BuildPalette(cmap []byte, camg uint32, planes uint8) Palette {
	bits := int(planes)
	if bits > maxPaletteBits {
		bits = maxPaletteBits
	}
	n := 1 << bits

	p := make(Palette, n)
	for i := 0; i < n && i*3+2 < len(cmap); i++ {
		p[i] = RGB{cmap[i*3], cmap[i*3+1], cmap[i*3+2]}
	}

	// Six planes always give 64 entries, the upper half is overwritten
	if camg&CAMGEHB != 0 && planes == ehbPlanes {
		for i := 0; i < ehbBaseColors; i++ {
			c := p[i]
			p[ehbBaseColors+i] = RGB{c.R >> 1, c.G >> 1, c.B >> 1}
		}
	}

	return p
}

// ColorPalette returns p as opaque colors.
func (p Palette) ColorPalette() color.Palette {
	cp := make(color.Palette, len(p))
	for i, c := range p {
		cp[i] = color.RGBA{c.R, c.G, c.B, 0xff}
	}
	return cp
}
