package ilbm

import (
	"errors"
	"strconv"
)

var (
	// ErrInvalidData is returned when the data is too short to hold a FORM
	// header.
	ErrInvalidData = errors.New("ilbm: invalid or corrupt IFF data")
	// ErrNotContainer is returned when the data is not a FORM ILBM or FORM
	// PBM container.
	ErrNotContainer = errors.New("ilbm: not an IFF ILBM file")
	// ErrMissingHeader is returned when no BMHD chunk was found.
	ErrMissingHeader = errors.New("ilbm: missing BMHD chunk")
	// ErrMissingBody is returned when no non-empty BODY chunk was found.
	ErrMissingBody = errors.New("ilbm: missing BODY chunk")
	// ErrDecodingFailed is returned when the decoded pixels do not form a
	// usable image, for example when either dimension is zero.
	ErrDecodingFailed = errors.New("ilbm: failed to decode image data")
)

// An UnsupportedCompressionError reports a BMHD compression type other than
// none or ByteRun1.
type UnsupportedCompressionError uint8

func (e UnsupportedCompressionError) Error() string {
	return "ilbm: unsupported compression type: " + strconv.Itoa(int(e))
}
