/*
Package iffit indexes directories of Amiga IFF ILBM and PBM images.

Scanning a directory records the descriptive attributes of every image in a
SQLite database and writes a thumbnail cache into each directory containing
images.
*/
package iffit

import (
	"runtime"

	"github.com/rcoenen/iffit/cache"
	"github.com/rcoenen/iffit/thumbnail"
	"github.com/rs/zerolog"
)

type IFFit struct {
	db        *IndexDB
	logger    zerolog.Logger
	workers   int
	thumbSize int
}

// Option configures an IFFit.
type Option func(*IFFit)

// WithWorkers sets the number of directories scanned concurrently.
func WithWorkers(n int) Option {
	return func(m *IFFit) {
		if n > 0 {
			m.workers = n
		}
	}
}

// WithThumbnailSize sets the bounding box of cached thumbnails, up to
// cache.MaxSize.
func WithThumbnailSize(n int) Option {
	return func(m *IFFit) {
		if n > 0 {
			m.thumbSize = min(n, cache.MaxSize)
		}
	}
}

func New(db *IndexDB, logger zerolog.Logger, opts ...Option) *IFFit {
	m := &IFFit{
		db:        db,
		logger:    logger,
		workers:   runtime.NumCPU(),
		thumbSize: thumbnail.DefaultSize,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}
