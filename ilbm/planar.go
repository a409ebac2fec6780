package ilbm

import (
	"runtime"
	"sync"
)

// Below this many rows per worker the goroutine overhead isn't worth it
const minStripeRows = 32

// planeRowBytes returns the length of one plane row; rows are padded to a
// multiple of 16 pixels.
func planeRowBytes(width int) int {
	return (width + 15) / 16 * 2
}

// byteAt returns b[i], or zero if i is out of range.
func byteAt(b []byte, i int) byte {
	if i < 0 || i >= len(b) {
		return 0
	}
	return b[i]
}

// readPlanarRow assembles the per-pixel values of one row from planes
// consecutive plane rows starting at offset start in body. Plane n supplies
// bit n of each value and the most significant bit of each byte is the
// leftmost pixel. The result is written to values, one entry per pixel.
func readPlanarRow(body []byte, start, rowBytes, planes int, values []uint32) {
	for i := range values {
		values[i] = 0
	}

	width := len(values)
	for plane := 0; plane < planes; plane++ {
		bit := uint32(1) << uint(plane)
		offset := start + plane*rowBytes

		for i := 0; i < rowBytes; i++ {
			b := byteAt(body, offset+i)
			if b == 0 {
				continue
			}
			x := i << 3
			for mask := byte(0x80); mask != 0 && x < width; mask >>= 1 {
				if b&mask != 0 {
					values[x] |= bit
				}
				x++
			}
		}
	}
}

// forEachStripe splits rows 0..height into contiguous stripes and calls fn
// for each one, concurrently when there are enough rows. fn must only touch
// the rows it is given.
func forEachStripe(height int, fn func(y0, y1 int)) {
	workers := runtime.NumCPU()
	if n := height / minStripeRows; n < workers {
		workers = n
	}
	if workers <= 1 {
		fn(0, height)
		return
	}

	rowsPerWorker := (height + workers - 1) / workers

	var wg sync.WaitGroup
	for y0 := 0; y0 < height; y0 += rowsPerWorker {
		y1 := y0 + rowsPerWorker
		if y1 > height {
			y1 = height
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			fn(y0, y1)
		}(y0, y1)
	}
	wg.Wait()
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
