// Package convert drives a batch of decoded images through palette
// construction, quantization and BMP encoding.
package convert

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"palbmp/bmp8"
	"palbmp/palette"
	"palbmp/parallel"
	"palbmp/raster"
	"palbmp/sink"
)

var ErrEmptyInput = errors.New("no images to convert")

type Image struct {
	Source string
	Pixels raster.Pixels
}

// Sink receives every converted image. Put may be called from several
// goroutines at once.
type Sink interface {
	Put(sink.Output) error
}

type SinkFunc func(sink.Output) error

func (f SinkFunc) Put(out sink.Output) error {
	return f(out)
}

type Options struct {
	Mode      palette.Mode
	RowOrder  bmp8.RowOrder
	KeepNames bool
	// Workers bounds parallel quantization and encoding; below 1 means one
	// worker per CPU.
	Workers int
}

type Report struct {
	Processed int
	Failed    int
	// Shared is the batch palette in Shared mode, nil otherwise.
	Shared *palette.Palette
}

// Batch converts images and hands each result to out. A failing image is
// logged and counted without stopping the others. In Shared mode every image
// is scanned before any is quantized.
func Batch(logger *slog.Logger, images []Image, opts Options, out Sink) (Report, error) {
	if len(images) == 0 {
		return Report{}, ErrEmptyInput
	}

	sources := make([]string, len(images))
	for i, img := range images {
		sources[i] = img.Source
	}
	names := sink.Names(sources, opts.KeepNames)

	var rep Report
	var processed, failed atomic.Int64
	pool := parallel.Start(opts.Workers)

	emit := func(i int, pal *palette.Palette, index *palette.Index) {
		img := images[i]
		log := logger.With("file", img.Source, "image", i+1, "output", names[i])

		data, err := encode(img.Pixels, pal, index, opts.RowOrder)
		if err == nil {
			err = out.Put(sink.Output{
				Index:   i,
				Total:   len(images),
				Source:  img.Source,
				Name:    names[i],
				BMP:     data,
				Palette: pal,
			})
		}
		if err != nil {
			failed.Add(1)
			log.Error("could not convert image", "error", err)
			return
		}
		processed.Add(1)
		log.Info("converted", "width", img.Pixels.Width, "height", img.Pixels.Height, "bytes", len(data))
	}

	switch opts.Mode {
	case palette.Shared:
		table := palette.NewTable(palette.Shared)
		scanned := make([]bool, len(images))
		for i, img := range images {
			if err := table.Scan(img.Pixels); err != nil {
				failed.Add(1)
				logger.Error("could not collect colors", "file", img.Source, "image", i+1, "error", err)
				continue
			}
			scanned[i] = true
		}
		logPalette(logger, table)

		pal := palette.Build(table)
		index := palette.NewIndex(&pal, palette.Shared)
		rep.Shared = &pal

		for i := range images {
			if scanned[i] {
				pool.Do(func() { emit(i, &pal, index) })
			}
		}
	case palette.PerImage:
		for i, img := range images {
			pool.Do(func() {
				table := palette.NewTable(palette.PerImage)
				if err := table.Scan(img.Pixels); err != nil {
					failed.Add(1)
					logger.Error("could not collect colors", "file", img.Source, "image", i+1, "error", err)
					return
				}
				logPalette(logger.With("file", img.Source, "image", i+1), table)

				pal := palette.Build(table)
				emit(i, &pal, palette.NewIndex(&pal, palette.PerImage))
			})
		}
	default:
		pool.Wait()
		return Report{}, fmt.Errorf("%w: %v", palette.ErrUnknownMode, opts.Mode)
	}

	pool.Wait()

	rep.Processed = int(processed.Load())
	rep.Failed = int(failed.Load())
	return rep, nil
}

func encode(p raster.Pixels, pal *palette.Palette, index *palette.Index, order bmp8.RowOrder) ([]byte, error) {
	indices, err := index.Quantize(p)
	if err != nil {
		return nil, fmt.Errorf("could not quantize: %w", err)
	}
	data, err := bmp8.Encode(p.Width, p.Height, indices, pal, order)
	if err != nil {
		return nil, fmt.Errorf("could not encode: %w", err)
	}
	return data, nil
}

func logPalette(logger *slog.Logger, table *palette.Table) {
	logger.Debug("palette collected", "mode", table.Mode(), "colors", table.Len())
	if skipped := table.Skipped(); skipped > 0 {
		logger.Warn("palette full, unmapped colors use the fallback slot",
			"mode", table.Mode(), "fallback", table.Mode().Fallback(), "pixels", skipped)
	}
}
