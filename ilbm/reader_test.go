package ilbm

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/rcoenen/iffit/internal/ifftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pixelAt(m *Image, x, y int) color.NRGBA {
	i := y*m.Stride() + x*4
	return color.NRGBA{m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3]}
}

var (
	red   = color.NRGBA{0xff, 0x00, 0x00, 0xff}
	green = color.NRGBA{0x00, 0xff, 0x00, 0xff}
	black = color.NRGBA{0x00, 0x00, 0x00, 0xff}
)

func TestParseMinimal(t *testing.T) {
	data := ifftest.Form("ILBM",
		ifftest.BMHD(ifftest.Header{Width: 2, Height: 2, Planes: 1}),
		ifftest.CMAP(0xff0000, 0x00ff00),
		ifftest.BODY([]byte{0x80, 0x00}),
	)

	m, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, uint32(2), m.Width)
	assert.Equal(t, uint32(2), m.Height)
	assert.Len(t, m.Pix, 2*2*4)

	// Each plane row is padded to 2 bytes so the body only covers the
	// first row; the second row reads as zeros
	assert.Equal(t, green, pixelAt(m, 0, 0))
	assert.Equal(t, red, pixelAt(m, 1, 0))
	assert.Equal(t, red, pixelAt(m, 0, 1))
	assert.Equal(t, red, pixelAt(m, 1, 1))
}

func TestParseBitOrder(t *testing.T) {
	data := ifftest.Form("ILBM",
		ifftest.BMHD(ifftest.Header{Width: 8, Height: 1, Planes: 1}),
		ifftest.CMAP(0x000000, 0xffffff),
		ifftest.BODY([]byte{0xb0, 0x00}),
	)

	m, err := Parse(data)
	require.NoError(t, err)

	for x, set := range []bool{true, false, true, true, false, false, false, false} {
		want := uint8(0x00)
		if set {
			want = 0xff
		}
		assert.Equal(t, want, pixelAt(m, x, 0).R, "pixel %d", x)
	}
}

func TestParseIndexed(t *testing.T) {
	rows := [][]uint32{
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17},
		{17, 16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
	}
	colors := make([]uint32, 32)
	for i := range colors {
		colors[i] = uint32(i)<<16 | uint32(i*2)<<8 | uint32(i*3)
	}
	body := ifftest.Planar(18, 5, false, rows)

	for _, compression := range []uint8{CompressionNone, CompressionByteRun1} {
		b := body
		if compression == CompressionByteRun1 {
			b = ifftest.ByteRun1(body)
		}
		data := ifftest.Form("ILBM",
			ifftest.BMHD(ifftest.Header{Width: 18, Height: 2, Planes: 5, Compression: compression}),
			ifftest.CMAP(colors...),
			ifftest.BODY(b),
		)

		m, err := Parse(data)
		require.NoError(t, err)

		for y, row := range rows {
			for x, v := range row {
				i := uint8(v)
				assert.Equal(t, color.NRGBA{i, i * 2, i * 3, 0xff}, pixelAt(m, x, y), "compression %d, pixel %d,%d", compression, x, y)
			}
		}
	}
}

func TestParseMask(t *testing.T) {
	rows := [][]uint32{
		{1, 1, 1, 1},
		{0, 1, 0, 1},
	}
	data := ifftest.Form("ILBM",
		ifftest.BMHD(ifftest.Header{Width: 4, Height: 2, Planes: 1, Masking: MaskHasMask}),
		ifftest.CMAP(0xff0000, 0x00ff00),
		ifftest.BODY(ifftest.Planar(4, 1, true, rows)),
	)

	m, err := Parse(data)
	require.NoError(t, err)

	// The mask plane must not bleed into the next row
	assert.Equal(t, green, pixelAt(m, 0, 0))
	assert.Equal(t, red, pixelAt(m, 0, 1))
	assert.Equal(t, green, pixelAt(m, 1, 1))
	assert.Equal(t, red, pixelAt(m, 2, 1))
}

func TestParseIndexOutsidePalette(t *testing.T) {
	// 9 planes gives a 256 color palette but 512 possible indices
	data := ifftest.Form("ILBM",
		ifftest.BMHD(ifftest.Header{Width: 2, Height: 1, Planes: 9}),
		ifftest.CMAP(0x102030, 0x405060),
		ifftest.BODY(ifftest.Planar(2, 9, false, [][]uint32{{0x101, 1}})),
	)

	m, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, black, pixelAt(m, 0, 0))
	assert.Equal(t, color.NRGBA{0x40, 0x50, 0x60, 0xff}, pixelAt(m, 1, 0))
}

func TestParseShortBody(t *testing.T) {
	data := ifftest.Form("ILBM",
		ifftest.BMHD(ifftest.Header{Width: 16, Height: 4, Planes: 2}),
		ifftest.CMAP(0x000000, 0x111111, 0x222222, 0x333333),
		ifftest.BODY([]byte{0xff}),
	)

	m, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, m.Pix, 16*4*4)

	// Only the first 8 pixels of plane 0 in row 0 are set
	assert.Equal(t, color.NRGBA{0x11, 0x11, 0x11, 0xff}, pixelAt(m, 7, 0))
	assert.Equal(t, black, pixelAt(m, 8, 0))
	assert.Equal(t, black, pixelAt(m, 15, 3))
}

func TestParseEHB(t *testing.T) {
	data := ifftest.Form("ILBM",
		ifftest.BMHD(ifftest.Header{Width: 2, Height: 1, Planes: 6}),
		ifftest.CMAP(0xfe8042),
		ifftest.CAMG(CAMGEHB),
		ifftest.BODY(ifftest.Planar(2, 6, false, [][]uint32{{0, 32}})),
	)

	m, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, color.NRGBA{0xfe, 0x80, 0x42, 0xff}, pixelAt(m, 0, 0))
	assert.Equal(t, color.NRGBA{0x7f, 0x40, 0x21, 0xff}, pixelAt(m, 1, 0))
}

func TestParseHAM6(t *testing.T) {
	rows := [][]uint32{
		{
			0x01,        // palette entry 1
			1<<4 | 0x0f, // modify blue
			2<<4 | 0x08, // modify red
			3<<4 | 0x01, // modify green
			0x00,        // palette entry 0
		},
		{1<<4 | 0x0f, 2<<4 | 0x0f, 0, 0, 0},
	}

	data := ifftest.Form("ILBM",
		ifftest.BMHD(ifftest.Header{Width: 5, Height: 2, Planes: 6}),
		ifftest.CMAP(0x000000, 0x112233),
		ifftest.CAMG(CAMGHAM),
		ifftest.BODY(ifftest.Planar(5, 6, false, rows)),
	)

	m, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, color.NRGBA{0x11, 0x22, 0x33, 0xff}, pixelAt(m, 0, 0))
	assert.Equal(t, color.NRGBA{0x11, 0x22, 0xf0, 0xff}, pixelAt(m, 1, 0))
	assert.Equal(t, color.NRGBA{0x80, 0x22, 0xf0, 0xff}, pixelAt(m, 2, 0))
	assert.Equal(t, color.NRGBA{0x80, 0x10, 0xf0, 0xff}, pixelAt(m, 3, 0))
	assert.Equal(t, black, pixelAt(m, 4, 0))

	// Carry resets at the start of each row
	assert.Equal(t, color.NRGBA{0x00, 0x00, 0xf0, 0xff}, pixelAt(m, 0, 1))
	assert.Equal(t, color.NRGBA{0xf0, 0x00, 0xf0, 0xff}, pixelAt(m, 1, 1))
}

func TestParseHAM8(t *testing.T) {
	data := ifftest.Form("ILBM",
		ifftest.BMHD(ifftest.Header{Width: 3, Height: 1, Planes: 8}),
		ifftest.CMAP(0x000000, 0x000000, 0xabcdef),
		ifftest.CAMG(CAMGHAM),
		ifftest.BODY(ifftest.Planar(3, 8, false, [][]uint32{{0x02, 3<<6 | 0x3f, 2<<6 | 0x01}})),
	)

	m, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, color.NRGBA{0xab, 0xcd, 0xef, 0xff}, pixelAt(m, 0, 0))
	assert.Equal(t, color.NRGBA{0xab, 0xfc, 0xef, 0xff}, pixelAt(m, 1, 0))
	assert.Equal(t, color.NRGBA{0x04, 0xfc, 0xef, 0xff}, pixelAt(m, 2, 0))
}

func TestHAMColorPlanes(t *testing.T) {
	for _, tc := range []struct {
		planes      int
		colorPlanes int
		shift       uint
	}{
		{5, 4, 4},
		{6, 4, 4},
		{7, 6, 2},
		{8, 6, 2},
	} {
		colorPlanes, shift := hamColorPlanes(tc.planes)
		assert.Equal(t, tc.colorPlanes, colorPlanes, "%d planes", tc.planes)
		assert.Equal(t, tc.shift, shift, "%d planes", tc.planes)
	}
}

func TestParseDirect(t *testing.T) {
	values := []uint32{0x80ff0000, 0x0000ff00, 0xff0000ff, 0x7f123456}

	t.Run("24-bit", func(t *testing.T) {
		data := ifftest.Form("ILBM",
			ifftest.BMHD(ifftest.Header{Width: 4, Height: 1, Planes: 24}),
			ifftest.BODY(ifftest.Planar(4, 24, false, [][]uint32{values})),
		)

		m, err := Parse(data)
		require.NoError(t, err)

		assert.Equal(t, color.NRGBA{0x00, 0x00, 0xff, 0xff}, pixelAt(m, 0, 0))
		assert.Equal(t, color.NRGBA{0x00, 0xff, 0x00, 0xff}, pixelAt(m, 1, 0))
		assert.Equal(t, color.NRGBA{0xff, 0x00, 0x00, 0xff}, pixelAt(m, 2, 0))
		assert.Equal(t, color.NRGBA{0x56, 0x34, 0x12, 0xff}, pixelAt(m, 3, 0))
	})
	t.Run("32-bit", func(t *testing.T) {
		data := ifftest.Form("ILBM",
			ifftest.BMHD(ifftest.Header{Width: 4, Height: 1, Planes: 32}),
			ifftest.BODY(ifftest.Planar(4, 32, false, [][]uint32{values})),
		)

		m, err := Parse(data)
		require.NoError(t, err)

		assert.Equal(t, color.NRGBA{0x00, 0x00, 0xff, 0x80}, pixelAt(m, 0, 0))
		assert.Equal(t, color.NRGBA{0x00, 0xff, 0x00, 0x00}, pixelAt(m, 1, 0))
		assert.Equal(t, color.NRGBA{0xff, 0x00, 0x00, 0xff}, pixelAt(m, 2, 0))
		assert.Equal(t, color.NRGBA{0x56, 0x34, 0x12, 0x7f}, pixelAt(m, 3, 0))
	})
	t.Run("32-bit short body", func(t *testing.T) {
		data := ifftest.Form("ILBM",
			ifftest.BMHD(ifftest.Header{Width: 2, Height: 1, Planes: 32}),
			ifftest.BODY([]byte{0xff}),
		)

		m, err := Parse(data)
		require.NoError(t, err)

		assert.Equal(t, color.NRGBA{0x01, 0x00, 0x00, 0x00}, pixelAt(m, 0, 0))
	})
}

func TestParsePBM(t *testing.T) {
	// Rows of 3 pixels are padded to 4 bytes
	data := ifftest.Form("PBM ",
		ifftest.BMHD(ifftest.Header{Width: 3, Height: 2, Planes: 2}),
		ifftest.CMAP(0xff0000, 0x00ff00, 0x0000ff),
		ifftest.BODY([]byte{
			0, 1, 2, 9,
			3, 200,
		}),
	)

	m, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, red, pixelAt(m, 0, 0))
	assert.Equal(t, green, pixelAt(m, 1, 0))
	assert.Equal(t, color.NRGBA{0x00, 0x00, 0xff, 0xff}, pixelAt(m, 2, 0))
	// Entry 3 exists but was padded black
	assert.Equal(t, black, pixelAt(m, 0, 1))
	// Outside the palette and past the end of the body stay transparent
	assert.Equal(t, color.NRGBA{}, pixelAt(m, 1, 1))
	assert.Equal(t, color.NRGBA{}, pixelAt(m, 2, 1))
}

func TestParseStripes(t *testing.T) {
	// Enough rows to be split across workers
	const width, height = 20, 300

	rows := make([][]uint32, height)
	for y := range rows {
		rows[y] = make([]uint32, width)
		for x := range rows[y] {
			rows[y][x] = uint32((x + y) % 4)
		}
	}
	data := ifftest.Form("ILBM",
		ifftest.BMHD(ifftest.Header{Width: width, Height: height, Planes: 2}),
		ifftest.CMAP(0x000000, 0x400000, 0x800000, 0xc00000),
		ifftest.BODY(ifftest.Planar(width, 2, false, rows)),
	)

	m, err := Parse(data)
	require.NoError(t, err)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			require.Equal(t, uint8((x+y)%4*0x40), pixelAt(m, x, y).R, "pixel %d,%d", x, y)
		}
	}
}

func TestParseErrors(t *testing.T) {
	header := ifftest.BMHD(ifftest.Header{Width: 2, Height: 2, Planes: 1})
	body := ifftest.BODY([]byte{0, 0, 0, 0})

	for _, tc := range []struct {
		name string
		data []byte
		want error
	}{
		{"short", []byte("FORM"), ErrInvalidData},
		{"not iff", []byte("GIF89a\x00\x00\x00\x00\x00\x00"), ErrNotContainer},
		{"no header", ifftest.Form("ILBM", body), ErrMissingHeader},
		{"short header", ifftest.Form("ILBM", ifftest.Chunk{ID: "BMHD", Data: make([]byte, 19)}, body), ErrMissingHeader},
		{"no body", ifftest.Form("ILBM", header), ErrMissingBody},
		{"empty body", ifftest.Form("ILBM", header, ifftest.BODY(nil)), ErrMissingBody},
		{"zero width", ifftest.Form("ILBM", ifftest.BMHD(ifftest.Header{Height: 2, Planes: 1}), body), ErrDecodingFailed},
		{"zero height", ifftest.Form("ILBM", ifftest.BMHD(ifftest.Header{Width: 2, Planes: 1}), body), ErrDecodingFailed},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Parse(tc.data)
			assert.Nil(t, m)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("unsupported compression", func(t *testing.T) {
		data := ifftest.Form("ILBM", ifftest.BMHD(ifftest.Header{Width: 2, Height: 2, Planes: 1, Compression: 2}), body)

		_, err := Parse(data)

		var cErr UnsupportedCompressionError
		require.True(t, errors.As(err, &cErr))
		assert.Equal(t, UnsupportedCompressionError(2), cErr)
		assert.EqualError(t, err, "ilbm: unsupported compression type: 2")
	})
}

func TestResolveMode(t *testing.T) {
	for _, tc := range []struct {
		name   string
		pbm    bool
		planes uint8
		camg   uint32
		want   Mode
	}{
		{"pbm wins", true, 24, CAMGHAM, ModePBM},
		{"24-bit", false, 24, CAMGHAM, ModeDirect24},
		{"32-bit", false, 32, 0, ModeDirect32},
		{"ham", false, 6, CAMGHAM, ModeHAM},
		{"ham before ehb", false, 6, CAMGHAM | CAMGEHB, ModeHAM},
		{"ehb is indexed", false, 6, CAMGEHB, ModeIndexed},
		{"indexed", false, 4, 0, ModeIndexed},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveMode(tc.pbm, BitmapHeader{Planes: tc.planes}, tc.camg))
		})
	}
}

func TestDecodeRegistered(t *testing.T) {
	data := ifftest.Form("ILBM",
		ifftest.BMHD(ifftest.Header{Width: 2, Height: 2, Planes: 1}),
		ifftest.CMAP(0xff0000, 0x00ff00),
		ifftest.BODY([]byte{0x80, 0x00, 0x40, 0x00}),
	)

	m, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "ilbm", format)
	assert.Equal(t, image.Rect(0, 0, 2, 2), m.Bounds())
	assert.Equal(t, green, m.At(0, 0))
	assert.Equal(t, green, m.At(1, 1))

	config, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "ilbm", format)
	assert.Equal(t, 2, config.Width)
	assert.Equal(t, color.NRGBAModel, config.ColorModel)

	t.Run("pbm", func(t *testing.T) {
		data := ifftest.Form("PBM ",
			ifftest.BMHD(ifftest.Header{Width: 1, Height: 1, Planes: 8}),
			ifftest.BODY([]byte{0, 0}),
		)
		_, format, err := image.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, "pbm", format)
	})
}
