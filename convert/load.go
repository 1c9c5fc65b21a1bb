package convert

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"palbmp/parallel"
	"palbmp/raster"

	"golang.org/x/sync/errgroup"
)

type PrepareFunc func(logger *slog.Logger, img image.Image) (image.Image, error)

// Expand resolves inputs into file paths. Directories contribute their
// regular files in name order, without descending into sub-directories.
func Expand(inputs []string) ([]string, error) {
	var paths []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("invalid input %q: %w", in, err)
		}
		if !info.IsDir() {
			paths = append(paths, in)
			continue
		}

		entries, err := os.ReadDir(in)
		if err != nil {
			return nil, fmt.Errorf("unable to read folder %q: %w", in, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !entry.Type().IsRegular() {
				continue
			}
			paths = append(paths, filepath.Join(in, entry.Name()))
		}
	}
	return paths, nil
}

// Load decodes paths concurrently and returns the images that could be read,
// in the order of paths, together with the number of failures. Loading
// finishes before it returns so callers can build a palette from the result.
func Load(logger *slog.Logger, paths []string, workers int, prepare PrepareFunc) ([]Image, int) {
	decoded := make([]*Image, len(paths))
	var failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(parallel.Workers(workers))
	for i, path := range paths {
		g.Go(func() error {
			log := logger.With("file", path)

			img, format, err := raster.Open(path)
			if err != nil {
				failed.Add(1)
				log.Error("could not read image", "error", err)
				return nil
			}

			if prepare != nil {
				if img, err = prepare(log, img); err != nil {
					failed.Add(1)
					log.Error("could not prepare image", "error", err)
					return nil
				}
			}

			px := raster.FromImage(img)
			log.Debug("decoded", "format", format, "width", px.Width, "height", px.Height)
			decoded[i] = &Image{Source: path, Pixels: px}
			return nil
		})
	}
	_ = g.Wait()

	images := make([]Image, 0, len(paths))
	for _, img := range decoded {
		if img != nil {
			images = append(images, *img)
		}
	}
	return images, int(failed.Load())
}
