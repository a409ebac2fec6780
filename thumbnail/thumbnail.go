/*
Package thumbnail sizes and scales decoded images for display.

Fit computes the size of a thumbnail that has to fit a requested box, while
PreviewSize computes the size of a larger preview window. Neither ever
decodes anything; they only work on dimensions.
*/
package thumbnail

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

const (
	previewMaxWidth  = 1200
	previewMaxHeight = 900
	previewMin       = 200

	// DefaultSize is the default bounding box for thumbnails
	DefaultSize = 256
)

var errBadFormat = errors.New("thumbnail: unknown output format")

// Format is an output file format.
type Format int

const (
	PNG Format = iota
	GIF
	BMP
	TIFF
)

// FormatFromPath picks the output format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".gif":
		return GIF, nil
	case ".bmp":
		return BMP, nil
	case ".tif", ".tiff":
		return TIFF, nil
	default:
		return 0, errBadFormat
	}
}

func round(f float64) int {
	return int(math.Round(f))
}

// Fit returns the largest size with the same aspect ratio as w by h that
// fits within maxW by maxH without upscaling. Each side is at least 1.
func Fit(w, h, maxW, maxH int) image.Point {
	if w <= 0 || h <= 0 {
		return image.Point{1, 1}
	}

	aspect := float64(w) / float64(h)

	var tw, th float64
	if aspect >= 1 {
		tw = math.Min(float64(maxW), float64(w))
		th = tw / aspect
		if th > float64(maxH) {
			th = float64(maxH)
			tw = th * aspect
		}
	} else {
		th = math.Min(float64(maxH), float64(h))
		tw = th * aspect
		if tw > float64(maxW) {
			tw = float64(maxW)
			th = tw / aspect
		}
	}

	return image.Point{
		X: max(1, round(tw)),
		Y: max(1, round(th)),
	}
}

// PreviewSize returns the size of a preview window for a w by h image: the
// image scaled down to fit 1200 by 900, but no side smaller than 200.
func PreviewSize(w, h int) image.Point {
	if w <= 0 || h <= 0 {
		return image.Point{previewMin, previewMin}
	}

	aspect := float64(w) / float64(h)

	pw := math.Min(float64(w), previewMaxWidth)
	ph := pw / aspect
	if ph > previewMaxHeight {
		ph = previewMaxHeight
		pw = ph * aspect
	}

	return image.Point{
		X: round(math.Max(pw, previewMin)),
		Y: round(math.Max(ph, previewMin)),
	}
}

// Scale resizes src to size. Downscaling uses Catmull-Rom, upscaling keeps
// hard pixel edges.
func Scale(src image.Image, size image.Point) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rectangle{Max: size})

	var s draw.Scaler = draw.CatmullRom
	if size.X >= b.Dx() && size.Y >= b.Dy() {
		s = draw.NearestNeighbor
	}
	s.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	return dst
}

// Render scales src to fit within a maxW by maxH box.
func Render(src image.Image, maxW, maxH int) *image.NRGBA {
	b := src.Bounds()
	return Scale(src, Fit(b.Dx(), b.Dy(), maxW, maxH))
}

// Paletted reduces m to at most colors colors using a median cut palette
// with Floyd-Steinberg dithering.
func Paletted(m image.Image, colors int) *image.Paletted {
	if colors < 2 {
		colors = 2
	}
	if colors > 256 {
		colors = 256
	}

	q := quantize.MedianCutQuantizer{}

	b := m.Bounds()
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, colors), m))
	draw.FloydSteinberg.Draw(pm, b, m, b.Min)

	return pm
}

// Encode writes m to w in the given format. GIF output is reduced to colors
// colors first.
func Encode(w io.Writer, m image.Image, format Format, colors int) error {
	switch format {
	case PNG:
		return png.Encode(w, m)
	case GIF:
		pm, ok := m.(*image.Paletted)
		if !ok {
			pm = Paletted(m, colors)
		}
		return gif.Encode(w, pm, nil)
	case BMP:
		return bmp.Encode(w, m)
	case TIFF:
		return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
	default:
		return errBadFormat
	}
}
