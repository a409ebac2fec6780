package ilbm

// hamColorPlanes returns the number of planes carrying the color value of a
// HAM pixel and the shift applied when that value replaces a single channel.
// HAM6 uses 4 color bits, HAM8 uses 6.
func hamColorPlanes(planes int) (colorPlanes int, shift uint) {
	colorPlanes = 4
	if planes >= 7 {
		colorPlanes = 6
	}
	return colorPlanes, uint(8 - colorPlanes)
}

// decodeHAM decodes Hold-And-Modify bit-planes. The top two planes select
// whether the color value indexes the palette or replaces the blue, red or
// green channel of the pixel to the left. Each row starts from black.
func decodeHAM(body []byte, width, height, planes int, palette Palette) []byte {
	rowBytes := planeRowBytes(width)
	stride := rowBytes * planes
	colorPlanes, shift := hamColorPlanes(planes)
	colorMask := uint32(1)<<uint(colorPlanes) - 1

	pix := make([]byte, width*height*4)
	fill(pix, 0xff)

	// Rows are independent, pixels within a row are not
	forEachStripe(height, func(y0, y1 int) {
		values := make([]uint32, width)
		for y := y0; y < y1; y++ {
			readPlanarRow(body, y*stride, rowBytes, planes, values)

			var r, g, b uint8
			row := pix[y*width*4 : (y+1)*width*4]
			for x, v := range values {
				cv := v & colorMask
				switch v >> uint(colorPlanes) {
				case 0:
					if cv < uint32(len(palette)) {
						c := palette[cv]
						r, g, b = c.R, c.G, c.B
					}
				case 1:
					b = uint8(cv << shift)
				case 2:
					r = uint8(cv << shift)
				case 3:
					g = uint8(cv << shift)
				}
				row[x*4+0] = r
				row[x*4+1] = g
				row[x*4+2] = b
			}
		}
	})

	return pix
}
