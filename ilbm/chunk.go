package ilbm

import (
	"bytes"
	"encoding/binary"
)

// Chunk is a single IFF chunk. Data is a sub-slice of the buffer passed to
// NewWalker and excludes any padding byte.
type Chunk struct {
	ID   [4]byte
	Size uint32
	Data []byte
}

// Walker iterates over the chunks of a FORM container.
type Walker struct {
	data      []byte
	form      [4]byte
	offset    int
	chunk     Chunk
	truncated bool
}

// NewWalker checks the FORM header of data and returns a Walker positioned
// before the first chunk.
func NewWalker(data []byte) (*Walker, error) {
	if len(data) < headerSize {
		return nil, ErrInvalidData
	}

	var form [4]byte
	copy(form[:], data[8:12])

	if !bytes.Equal(data[0:4], tagFORM[:]) || (form != tagILBM && form != tagPBM) {
		return nil, ErrNotContainer
	}

	return &Walker{
		data:   data,
		form:   form,
		offset: headerSize,
	}, nil
}

// FormType returns the FORM type, either ILBM or PBM.
func (w *Walker) FormType() [4]byte {
	return w.form
}

// IsPBM reports whether the container holds a chunky PBM image.
func (w *Walker) IsPBM() bool {
	return w.form == tagPBM
}

// Next advances to the next chunk. It returns false at the end of the data
// or when a chunk header or payload would run past the end of the data, in
// which case Truncated reports true.
func (w *Walker) Next() bool {
	if w.offset+chunkHeaderSize > len(w.data) {
		// Anything short of a full chunk header is trailing junk
		w.truncated = w.offset < len(w.data)
		return false
	}

	size := binary.BigEndian.Uint32(w.data[w.offset+4:])
	start := w.offset + chunkHeaderSize

	if uint64(start)+uint64(size) > uint64(len(w.data)) {
		w.truncated = true
		w.offset = len(w.data)
		return false
	}

	end := start + int(size)

	copy(w.chunk.ID[:], w.data[w.offset:])
	w.chunk.Size = size
	w.chunk.Data = w.data[start:end:end]

	w.offset = end + int(size&1)

	return true
}

// Chunk returns the chunk found by the most recent call to Next.
func (w *Walker) Chunk() Chunk {
	return w.chunk
}

// Truncated reports whether the walk stopped early because the data ended
// partway through a chunk.
func (w *Walker) Truncated() bool {
	return w.truncated
}
