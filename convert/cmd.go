package convert

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"palbmp/bmp8"
	"palbmp/palette"
	"palbmp/sink"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Inputs     []string      `arg:"" name:"input" help:"Images or folders of images to convert"`
	Dest       string        `help:"Destination folder for the bitmaps" default:"bmp"`
	Mode       string        `help:"Palette mode: one palette for the whole batch (shared) or one per image (per-image)" enum:"shared,per-image" default:"shared"`
	RowOrder   string        `help:"Pixel row layout: top-down keeps pictures upright, reversed-pad matches the browser tool" enum:"top-down,reversed-pad" default:"reversed-pad"`
	KeepNames  bool          `help:"Name bitmaps after their source files instead of image_<n>.bmp" default:"false"`
	Force      bool          `help:"Overwrite existing files" default:"false"`
	Workers    int           `help:"Number of parallel workers, 0 for one per CPU" default:"0"`
	PaletteOut string        `help:"Write the shared palette to this RIFF PAL file (shared mode only)" type:"path" group:"palette"`
	Palettes   bool          `help:"Store each bitmap's palette as <name>.pal next to it" default:"false" group:"palette"`
	Resize     bool          `help:"Resize images before conversion" default:"false" group:"resize"`
	Width      int           `help:"Max width" group:"resize"`
	Height     int           `help:"Max height" group:"resize"`
	Crop       bool          `help:"Crop image to maintain requested aspect ratio" default:"false" group:"resize"`
	Fill       string        `help:"If given and not cropping, fill the background with this color (#RGB, #RRGGBB, ...)" group:"resize"`
	FillColor  color.Color   `kong:"-"`
	PalMode    palette.Mode  `kong:"-"`
	Order      bmp8.RowOrder `kong:"-"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	var err error
	if c.PalMode, err = palette.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.Order, err = bmp8.ParseRowOrder(c.RowOrder); err != nil {
		return err
	}

	if c.PaletteOut != "" && c.PalMode != palette.Shared {
		return fmt.Errorf("--palette-out needs --mode=shared, use --palettes for per-image palettes")
	}

	if c.Dest, err = filepath.Abs(c.Dest); err != nil {
		return fmt.Errorf("invalid destination path %q: %w", c.Dest, err)
	}

	if c.Resize {
		switch {
		case c.Width < 0:
			return fmt.Errorf("invalid resize width: %d", c.Width)
		case c.Height < 0:
			return fmt.Errorf("invalid resize height: %d", c.Height)
		case c.Width == 0 && c.Height == 0:
			return fmt.Errorf("no resize dimensions given")
		}
	}

	if !c.Crop && c.Fill != "" {
		if c.FillColor, err = ParseColor(c.Fill); err != nil {
			return err
		}
	}

	return nil
}

func (c *CLICmd) Run(logger *slog.Logger) error {
	paths, err := Expand(c.Inputs)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	var prepare PrepareFunc
	if c.Resize {
		prepare = Resize{Width: c.Width, Height: c.Height, Crop: c.Crop, Fill: c.FillColor}.Apply
	}

	images, loadErrors := Load(logger, paths, c.Workers, prepare)
	if len(images) == 0 {
		return fmt.Errorf("%w: %d inputs, %d unreadable", ErrEmptyInput, len(paths), loadErrors)
	}

	out := &sink.Dir{
		Path:      c.Dest,
		KeepNames: c.KeepNames,
		Force:     c.Force,
		Palettes:  c.Palettes,
	}
	opts := Options{Mode: c.PalMode, RowOrder: c.Order, KeepNames: c.KeepNames, Workers: c.Workers}
	logger.Info("converting", "images", len(images), "mode", opts.Mode, "row_order", opts.RowOrder, "dest", c.Dest)

	rep, err := Batch(logger, images, opts, out)
	if err != nil {
		return err
	}

	if rep.Shared != nil && c.PaletteOut != "" {
		if err := sink.WritePalette(c.PaletteOut, rep.Shared, c.Force); err != nil {
			rep.Failed++
			logger.Error("could not save palette", "file", c.PaletteOut, "error", err)
		}
	}

	errors := rep.Failed + loadErrors
	logger.Info("stats", "processed", rep.Processed, "errors", errors, "total", rep.Processed+errors)

	if errors > 0 {
		return fmt.Errorf("error processing %d files", errors)
	}
	return nil
}
