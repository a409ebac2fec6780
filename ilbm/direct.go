package ilbm

const (
	direct24Planes = 24
	direct32Planes = 32
)

// decodeDirect decodes 24 or 32 bit-planes of direct color. Planes 0-7 are
// red, 8-15 green, 16-23 blue and, for 32 planes, 24-31 alpha, least
// significant bit first. 24-bit images are fully opaque.
func decodeDirect(body []byte, width, height, planes int) []byte {
	rowBytes := planeRowBytes(width)
	stride := rowBytes * planes

	pix := make([]byte, width*height*4)
	if planes != direct32Planes {
		fill(pix, 0xff)
	}

	forEachStripe(height, func(y0, y1 int) {
		var planeBytes [direct32Planes]byte
		for y := y0; y < y1; y++ {
			rowStart := y * stride
			row := pix[y*width*4 : (y+1)*width*4]

			for i := 0; i < rowBytes; i++ {
				for plane := 0; plane < planes; plane++ {
					planeBytes[plane] = byteAt(body, rowStart+plane*rowBytes+i)
				}

				for bit := 0; bit < 8; bit++ {
					x := i<<3 + bit
					if x >= width {
						break
					}
					mask := byte(0x80) >> uint(bit)

					var channels [4]uint8
					for plane := 0; plane < planes; plane++ {
						if planeBytes[plane]&mask != 0 {
							channels[plane>>3] |= 1 << uint(plane&7)
						}
					}

					row[x*4+0] = channels[0]
					row[x*4+1] = channels[1]
					row[x*4+2] = channels[2]
					if planes == direct32Planes {
						row[x*4+3] = channels[3]
					}
				}
			}
		}
	})

	return pix
}
