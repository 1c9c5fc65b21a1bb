package inspect

import (
	"bytes"
	"fmt"
	"image/color"
	"log/slog"
	"os"

	"palbmp/bmp8"
	"palbmp/palette"

	"golang.org/x/image/bmp"
)

type CLICmd struct {
	Files []string `arg:"" name:"file" help:"Bitmaps to inspect" type:"existingfile"`
}

type Summary struct {
	Header bmp8.Header
	// Colors is the number of distinct entries in the palette table.
	Colors int
}

// Check validates data as an 8-bit indexed bitmap and summarises it.
func Check(data []byte) (Summary, error) {
	var s Summary
	h, err := bmp8.ReadHeader(bytes.NewReader(data))
	if err != nil {
		return s, err
	}
	s.Header = h

	if int64(h.File.Size) != int64(len(data)) {
		return s, fmt.Errorf("%w: header declares %d bytes, file has %d", bmp8.ErrNotIndexedBMP, h.File.Size, len(data))
	}
	if int(h.File.OffBits) > len(data) {
		return s, fmt.Errorf("%w: pixel offset %d past end of file", bmp8.ErrNotIndexedBMP, h.File.OffBits)
	}
	if want := int(h.File.OffBits) + bmp8.RowSize(h.Width())*h.Height(); len(data) < want {
		return s, fmt.Errorf("%w: %dx%d needs %d bytes, file has %d", bmp8.ErrNotIndexedBMP, h.Width(), h.Height(), want, len(data))
	}

	cfg, err := bmp.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return s, fmt.Errorf("could not decode bitmap: %w", err)
	}
	pal, ok := cfg.ColorModel.(color.Palette)
	if !ok {
		return s, fmt.Errorf("%w: no color table", bmp8.ErrNotIndexedBMP)
	}

	seen := make(map[palette.Color]struct{}, palette.Size)
	table := palette.FromRGBA(pal)
	for _, c := range table[:min(len(pal), palette.Size)] {
		seen[c] = struct{}{}
	}
	s.Colors = len(seen)

	return s, nil
}

func (c *CLICmd) Run(logger *slog.Logger) error {
	var errCount int
	for _, name := range c.Files {
		log := logger.With("file", name)

		data, err := os.ReadFile(name)
		if err != nil {
			errCount++
			log.Error("could not read bitmap", "error", err)
			continue
		}

		s, err := Check(data)
		if err != nil {
			errCount++
			log.Error("invalid bitmap", "error", err)
			continue
		}

		log.Info("bitmap",
			"width", s.Header.Width(),
			"height", s.Header.Height(),
			"top_down", s.Header.TopDown(),
			"bpp", s.Header.Info.BitCount,
			"palette", s.Header.Info.ColorsUsed,
			"distinct_colors", s.Colors,
			"size", s.Header.File.Size)
	}

	if errCount > 0 {
		return fmt.Errorf("error inspecting %d files", errCount)
	}
	return nil
}
