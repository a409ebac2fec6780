/*
Package ilbm implements an IFF ILBM and PBM image decoder.

An IFF file is a FORM container holding a sequence of chunks, each a 4 byte
tag, a 4 byte big-endian length and a payload padded to an even length. The
BMHD chunk describes the bitmap, CMAP holds the palette as RGB triplets, CAMG
carries the Amiga viewport mode flags and BODY holds the pixel data, which may
be compressed with ByteRun1.

ILBM bodies are interleaved bit-planes; each row is stored as one plane row
after another, with every plane row padded to a multiple of 16 pixels. PBM
bodies are chunky, one byte per pixel with rows padded to an even length.

Supported encodings are plain indexed color, Extra-Half-Brite, HAM6, HAM8,
24-bit and 32-bit direct color, and PBM. Decoded images are 8-bit RGBA with
straight alpha. Alpha is 255 everywhere except in 32-bit images, which carry
their own alpha plane, and in PBM images, where pixels whose index falls
outside the palette are left fully transparent.
*/
package ilbm

const (
	headerSize      = 12
	chunkHeaderSize = 8
	bmhdSize        = 20
)

var (
	tagFORM = [4]byte{'F', 'O', 'R', 'M'}
	tagILBM = [4]byte{'I', 'L', 'B', 'M'}
	tagPBM  = [4]byte{'P', 'B', 'M', ' '}

	tagBMHD = [4]byte{'B', 'M', 'H', 'D'}
	tagCMAP = [4]byte{'C', 'M', 'A', 'P'}
	tagCAMG = [4]byte{'C', 'A', 'M', 'G'}
	tagBODY = [4]byte{'B', 'O', 'D', 'Y'}
	tagNAME = [4]byte{'N', 'A', 'M', 'E'}
	tagAUTH = [4]byte{'A', 'U', 'T', 'H'}
	tagCOPY = [4]byte{'(', 'c', ')', ' '}
	tagANNO = [4]byte{'A', 'N', 'N', 'O'}
)

// Viewport mode bits found in the CAMG chunk.
const (
	CAMGHAM uint32 = 0x0800
	CAMGEHB uint32 = 0x0080
)

// Compression types found in the BMHD chunk.
const (
	CompressionNone     uint8 = 0
	CompressionByteRun1 uint8 = 1
)

// Masking types found in the BMHD chunk. Only MaskHasMask stores an extra
// plane in the body.
const (
	MaskNone             uint8 = 0
	MaskHasMask          uint8 = 1
	MaskTransparentColor uint8 = 2
	MaskLasso            uint8 = 3
)
