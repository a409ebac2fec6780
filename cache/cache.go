/*
Package cache implements the small thumbnail cache written to each directory
containing IFF images.

The file starts with the four bytes "IFFT" and a version byte, followed by a
single zstd frame. Inside the frame is a little-endian entry count, then for
each entry, in key order, the 64-bit content key, the thumbnail width and
height as 16-bit values and the thumbnail as width*height*4 bytes of
non-premultiplied RGBA.
*/
package cache

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
)

const (
	// Filename is the expected filename used when writing to disk
	Filename = ".iffthumbs"

	magic      = "IFFT"
	version    = 1
	maxEntries = 4096

	// MaxSize is the largest width or height of a cached thumbnail
	MaxSize = 1024
)

var (
	errBadMagic   = errors.New("cache: not a thumbnail cache")
	errBadVersion = errors.New("cache: unsupported version")
	errBadSize    = errors.New("cache: thumbnail too large")
)

// Key returns the content key for the raw bytes of an image file.
func Key(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Cache is the thumbnail cache object. It implements the
// encoding.BinaryMarshaler and encoding.BinaryUnmarshaler interfaces.
type Cache struct {
	entries map[uint64]int
	thumbs  []*image.NRGBA
}

// New returns an empty cache
func New() *Cache {
	return &Cache{
		entries: make(map[uint64]int),
	}
}

// Length returns the number of thumbnails in the cache
func (c *Cache) Length() int {
	return len(c.entries)
}

// Set stores the thumbnail for the given key. An existing thumbnail for the
// same key is kept.
func (c *Cache) Set(key uint64, m *image.NRGBA) error {
	b := m.Bounds()
	if b.Dx() > MaxSize || b.Dy() > MaxSize {
		return errBadSize
	}
	if _, ok := c.entries[key]; ok {
		return nil
	}
	if len(c.entries) >= maxEntries {
		return fmt.Errorf("cache: more than %d entries", maxEntries)
	}

	// Normalise so the stride matches the width and the origin is zero
	dup := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		i := m.PixOffset(b.Min.X, b.Min.Y+y)
		copy(dup.Pix[y*dup.Stride:(y+1)*dup.Stride], m.Pix[i:i+b.Dx()*4])
	}

	c.thumbs = append(c.thumbs, dup)
	c.entries[key] = len(c.thumbs) - 1
	return nil
}

// Get returns the thumbnail stored for key
func (c *Cache) Get(key uint64) (*image.NRGBA, bool) {
	i, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return c.thumbs[i], true
}

func (c *Cache) sortedKeys() []uint64 {
	keys := make([]uint64, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// MarshalBinary encodes the cache into binary form and returns the result
func (c *Cache) MarshalBinary() ([]byte, error) {
	content := new(bytes.Buffer)

	if err := binary.Write(content, binary.LittleEndian, uint32(len(c.entries))); err != nil {
		return nil, err
	}

	for _, k := range c.sortedKeys() {
		m := c.thumbs[c.entries[k]]
		header := struct {
			Key           uint64
			Width, Height uint16
		}{k, uint16(m.Rect.Dx()), uint16(m.Rect.Dy())}

		if err := binary.Write(content, binary.LittleEndian, &header); err != nil {
			return nil, err
		}
		if _, err := content.Write(m.Pix); err != nil {
			return nil, err
		}
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer enc.Close()

	b := new(bytes.Buffer)
	b.WriteString(magic)
	b.WriteByte(version)
	b.Write(enc.EncodeAll(content.Bytes(), nil))

	return b.Bytes(), nil
}

// UnmarshalBinary decodes the cache from binary form
func (c *Cache) UnmarshalBinary(b []byte) error {
	if len(b) < len(magic)+1 || string(b[:len(magic)]) != magic {
		return errBadMagic
	}
	if b[len(magic)] != version {
		return errBadVersion
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return err
	}
	defer dec.Close()

	content, err := dec.DecodeAll(b[len(magic)+1:], nil)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	r := bytes.NewReader(content)

	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return err
	}
	if n > maxEntries {
		return fmt.Errorf("cache: more than %d entries", maxEntries)
	}

	c.entries = make(map[uint64]int, n)
	c.thumbs = make([]*image.NRGBA, 0, n)

	for i := uint32(0); i < n; i++ {
		var header struct {
			Key           uint64
			Width, Height uint16
		}
		if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
			return err
		}
		if header.Width > MaxSize || header.Height > MaxSize {
			return errBadSize
		}

		m := image.NewNRGBA(image.Rect(0, 0, int(header.Width), int(header.Height)))
		if _, err := io.ReadFull(r, m.Pix); err != nil {
			return errors.New("cache: insufficient data")
		}

		c.thumbs = append(c.thumbs, m)
		c.entries[header.Key] = len(c.thumbs) - 1
	}

	return nil
}
