package ilbm

// decodePBM decodes a chunky body, one palette index per byte with rows
// padded to an even length. Unlike the planar decoders, pixels that can't
// be resolved stay transparent.
func decodePBM(body []byte, width, height int, palette Palette) []byte {
	rowBytes := (width + 1) / 2 * 2

	pix := make([]byte, width*height*4)

	forEachStripe(height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < width; x++ {
				offset := y*rowBytes + x
				if offset >= len(body) {
					continue
				}
				ci := int(body[offset])
				if ci >= len(palette) {
					continue
				}
				c := palette[ci]
				i := (y*width + x) * 4
				pix[i+0] = c.R
				pix[i+1] = c.G
				pix[i+2] = c.B
				pix[i+3] = 0xff
			}
		}
	})

	return pix
}
