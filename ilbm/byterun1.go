package ilbm

// A two byte repeat run expands to at most 128 bytes
const maxExpansion = 64

// Decompress expands ByteRun1 (PackBits) data. A control byte n in 0..127
// copies the next n+1 bytes, -127..-1 repeats the next byte -n+1 times and
// -128 does nothing. Decoding stops early if a run is cut short by the end of
// src; whatever was decoded up to that point is returned. sizeHint, if
// positive, is used to size the output buffer.
func Decompress(src []byte, sizeHint int) []byte {
	if sizeHint <= 0 {
		sizeHint = len(src) * 2
	}
	dst := make([]byte, 0, sizeHint)

	for i := 0; i < len(src); {
		n := int8(src[i])
		i++

		switch {
		case n >= 0:
			end := i + int(n) + 1
			if end > len(src) {
				end = len(src)
			}
			dst = append(dst, src[i:end]...)
			i = end
		case n != -128:
			if i >= len(src) {
				return dst
			}
			b := src[i]
			i++
			for count := -int(n) + 1; count > 0; count-- {
				dst = append(dst, b)
			}
		}
	}

	return dst
}
