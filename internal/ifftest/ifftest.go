// Package ifftest builds synthetic IFF files for tests.
package ifftest

import (
	"bytes"
	"encoding/binary"
)

// Chunk is a tag and payload to be written into a FORM.
type Chunk struct {
	ID   string
	Data []byte
}

// Form returns a FORM container of the given type (ILBM or "PBM ") holding
// chunks, with odd length payloads padded.
func Form(formType string, chunks ...Chunk) []byte {
	var body bytes.Buffer
	body.WriteString(formType)
	for _, c := range chunks {
		body.WriteString(c.ID)
		_ = binary.Write(&body, binary.BigEndian, uint32(len(c.Data)))
		body.Write(c.Data)
		if len(c.Data)&1 != 0 {
			body.WriteByte(0)
		}
	}

	var b bytes.Buffer
	b.WriteString("FORM")
	_ = binary.Write(&b, binary.BigEndian, uint32(body.Len()))
	b.Write(body.Bytes())
	return b.Bytes()
}

// Header describes the BMHD fields tests care about.
type Header struct {
	Width, Height uint16
	Planes        uint8
	Masking       uint8
	Compression   uint8
	XAspect       uint8
	YAspect       uint8
}

// BMHD returns a BMHD chunk for h.
func BMHD(h Header) Chunk {
	p := make([]byte, 20)
	binary.BigEndian.PutUint16(p[0:], h.Width)
	binary.BigEndian.PutUint16(p[2:], h.Height)
	p[8] = h.Planes
	p[9] = h.Masking
	p[10] = h.Compression
	p[14] = h.XAspect
	p[15] = h.YAspect
	binary.BigEndian.PutUint16(p[16:], h.Width)
	binary.BigEndian.PutUint16(p[18:], h.Height)
	return Chunk{"BMHD", p}
}

// CMAP returns a CMAP chunk holding colors given as 0xRRGGBB.
func CMAP(colors ...uint32) Chunk {
	p := make([]byte, 0, len(colors)*3)
	for _, c := range colors {
		p = append(p, byte(c>>16), byte(c>>8), byte(c))
	}
	return Chunk{"CMAP", p}
}

// CAMG returns a CAMG chunk holding flags.
func CAMG(flags uint32) Chunk {
	p := make([]byte, 4)
	binary.BigEndian.PutUint32(p, flags)
	return Chunk{"CAMG", p}
}

// BODY returns a BODY chunk.
func BODY(p []byte) Chunk {
	return Chunk{"BODY", p}
}

// Planar interleaves per-pixel values into bit-planes, row by row. Bit n
// of each value goes to plane n. If mask is true an all-ones mask plane
// follows the color planes of each row.
func Planar(width, planes int, mask bool, rows [][]uint32) []byte {
	rowBytes := (width + 15) / 16 * 2
	total := planes
	if mask {
		total++
	}

	b := make([]byte, rowBytes*total*len(rows))
	for y, row := range rows {
		start := y * rowBytes * total
		for plane := 0; plane < planes; plane++ {
			offset := start + plane*rowBytes
			for x, v := range row {
				if v>>uint(plane)&1 != 0 {
					b[offset+x/8] |= 0x80 >> uint(x%8)
				}
			}
		}
		if mask {
			offset := start + planes*rowBytes
			for i := 0; i < rowBytes; i++ {
				b[offset+i] = 0xff
			}
		}
	}
	return b
}

// ByteRun1 compresses p using only literal runs.
func ByteRun1(p []byte) []byte {
	var b bytes.Buffer
	for len(p) > 0 {
		n := len(p)
		if n > 128 {
			n = 128
		}
		b.WriteByte(byte(n - 1))
		b.Write(p[:n])
		p = p[n:]
	}
	return b.Bytes()
}
