package ilbm

// decodeIndexed decodes interleaved bit-planes where each pixel value is a
// palette index. A mask plane, if present, follows the color planes of each
// row and is skipped. Pixels whose index is outside the palette are left
// opaque black.
func decodeIndexed(body []byte, width, height, planes int, hasMask bool, palette Palette) []byte {
	rowBytes := planeRowBytes(width)
	totalPlanes := planes
	if hasMask {
		totalPlanes++
	}
	stride := rowBytes * totalPlanes

	pix := make([]byte, width*height*4)
	fill(pix, 0xff)

	forEachStripe(height, func(y0, y1 int) {
		values := make([]uint32, width)
		for y := y0; y < y1; y++ {
			readPlanarRow(body, y*stride, rowBytes, planes, values)

			row := pix[y*width*4 : (y+1)*width*4]
			for x, v := range values {
				if v >= uint32(len(palette)) {
					continue
				}
				c := palette[v]
				row[x*4+0] = c.R
				row[x*4+1] = c.G
				row[x*4+2] = c.B
			}
		}
	})

	return pix
}
