package iffit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rcoenen/iffit/cache"
	"github.com/rcoenen/iffit/ilbm"
	"github.com/rcoenen/iffit/oops"
	"github.com/rcoenen/iffit/thumbnail"
)

const maxFileSize = 16 << (10 * 2)

func isImage(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".iff", ".ilbm", ".lbm", ".pbm", ".ham":
		return true
	default:
		return false
	}
}

func (m *IFFit) findDirectories(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(dir string, info os.FileInfo, err error) error {
			if err != nil {
				return oops.New(err, "failed to walk %s", dir)
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' && dir != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a directory
			if !info.Mode().IsDir() {
				return nil
			}

			select {
			case out <- dir:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

// indexFile records the attributes of file and adds its thumbnail to c.
// Files that aren't valid images are logged and skipped.
func (m *IFFit) indexFile(file string, c *cache.Cache) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return oops.New(err, "failed to read %s", file)
	}
	key := cache.Key(data)

	logger := m.logger.With().Str("file", file).Logger()

	md, err := ilbm.ParseMetadata(data)
	if err != nil {
		logger.Warn().Err(err).Msg("Skipping unreadable image")
		return nil
	}
	if md.Truncated {
		logger.Warn().Msg("Image is truncated")
	}

	if err := m.db.Upsert(file, key, AttributesFrom(md)); err != nil {
		return err
	}

	img, err := ilbm.Parse(data)
	if err != nil {
		logger.Warn().Err(err).Msg("Indexed image without thumbnail")
		return nil
	}

	if err := c.Set(key, thumbnail.Render(img.NRGBA(), m.thumbSize, m.thumbSize)); err != nil {
		logger.Warn().Err(err).Msg("Thumbnail not cached")
		return nil
	}

	logger.Debug().Str("mode", md.ColorMode()).Int("width", int(md.Width)).Int("height", int(md.Height)).Msg("Indexed image")

	return nil
}

func (m *IFFit) scanDirectory(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return oops.New(err, "failed to read directory %s", dir)
	}

	c := cache.New()
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Ignore any hidden files, this includes any existing cache
		if entry.Name()[0] == '.' {
			continue
		}

		// Ignore anything that isn't a normal file
		if !entry.Type().IsRegular() || !isImage(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return oops.New(err, "failed to stat %s", entry.Name())
		}

		file := filepath.Join(dir, entry.Name())

		// Ignore any file greater than 16 MB
		if info.Size() > maxFileSize {
			m.logger.Info().Str("file", file).Int64("size", info.Size()).Msg("Skipping large file")
			continue
		}

		if err := m.indexFile(file, c); err != nil {
			return err
		}
	}

	if c.Length() == 0 {
		return nil
	}

	b, err := c.MarshalBinary()
	if err != nil {
		return oops.New(err, "failed to encode thumbnails for %s", dir)
	}

	if err := os.WriteFile(filepath.Join(dir, cache.Filename), b, 0o644); err != nil {
		return oops.New(err, "failed to write thumbnails for %s", dir)
	}

	m.logger.Info().Str("dir", dir).Int("thumbnails", c.Length()).Msg("Wrote thumbnail cache")

	return nil
}

func (m *IFFit) directoryWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for dir := range in {
			if err := m.scanDirectory(ctx, dir); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan indexes every image below path and writes a thumbnail cache into each
// directory that contains at least one decodable image.
func (m *IFFit) Scan(path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return oops.New(err, "failed to resolve %s", path)
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	dirs, errc, err := m.findDirectories(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < m.workers; i++ {
		errc, err := m.directoryWorker(ctx, dirs)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
