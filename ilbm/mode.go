package ilbm

// Mode identifies which algorithm decodes the BODY of an image.
type Mode int

const (
	// ModeIndexed is plain bit-plane indexed color, including EHB.
	ModeIndexed Mode = iota
	// ModeHAM is HAM6 or HAM8.
	ModeHAM
	// ModeDirect24 is 24 bit-planes of direct RGB.
	ModeDirect24
	// ModeDirect32 is 32 bit-planes of direct RGBA.
	ModeDirect32
	// ModePBM is chunky, one byte per pixel indexed color.
	ModePBM
)

func (m Mode) String() string {
	switch m {
	case ModeIndexed:
		return "indexed"
	case ModeHAM:
		return "ham"
	case ModeDirect24:
		return "direct24"
	case ModeDirect32:
		return "direct32"
	case ModePBM:
		return "pbm"
	default:
		return "unknown"
	}
}

// ResolveMode picks the decoding algorithm. The first match wins: PBM,
// 24 planes, 32 planes, the HAM flag, then indexed. A file with both the HAM
// and EHB flags set is therefore decoded as HAM.
func ResolveMode(pbm bool, h BitmapHeader, camg uint32) Mode {
	switch {
	case pbm:
		return ModePBM
	case h.Planes == direct24Planes:
		return ModeDirect24
	case h.Planes == direct32Planes:
		return ModeDirect32
	case camg&CAMGHAM != 0:
		return ModeHAM
	default:
		return ModeIndexed
	}
}

// decode converts an uncompressed body to RGBA pixels.
func (m Mode) decode(body []byte, h BitmapHeader, palette Palette) []byte {
	width, height, planes := int(h.Width), int(h.Height), int(h.Planes)

	switch m {
	case ModePBM:
		return decodePBM(body, width, height, palette)
	case ModeDirect24, ModeDirect32:
		return decodeDirect(body, width, height, planes)
	case ModeHAM:
		return decodeHAM(body, width, height, planes, palette)
	default:
		return decodeIndexed(body, width, height, planes, h.hasMask(), palette)
	}
}
