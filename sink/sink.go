// Package sink stores converted bitmaps on disk.
package sink

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"palbmp/palette"
)

type Output struct {
	Index int
	Total int
	// Source is the path the image was decoded from, if any.
	Source string
	// Name overrides the file name derived by Name.
	Name    string
	BMP     []byte
	Palette *palette.Palette
}

// Name returns the file name for out: the source base name with a .bmp
// extension when keepNames is set, image.bmp for a lone image, image_<n>.bmp
// (1-based) otherwise.
func Name(out Output, keepNames bool) string {
	if keepNames && out.Source != "" {
		base := filepath.Base(out.Source)
		return strings.TrimSuffix(base, filepath.Ext(base)) + ".bmp"
	}
	if out.Total == 1 {
		return "image.bmp"
	}
	return fmt.Sprintf("image_%d.bmp", out.Index+1)
}

// Names resolves the file names of a whole batch. Names that collide,
// ignoring case, get a _2, _3, ... suffix in source order.
func Names(sources []string, keepNames bool) []string {
	names := make([]string, len(sources))
	taken := make(map[string]bool, len(sources))
	for i, src := range sources {
		name := Name(Output{Index: i, Total: len(sources), Source: src}, keepNames)
		base := strings.TrimSuffix(name, ".bmp")
		for n := 2; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d.bmp", base, n)
		}
		taken[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

type Dir struct {
	Path      string
	KeepNames bool
	// Force replaces existing files instead of failing.
	Force bool
	// Palettes also stores each output's palette as <name>.pal.
	Palettes bool
}

// Put writes out and, if enabled, its palette. Concurrent calls must carry
// distinct names, see Names.
func (d *Dir) Put(out Output) error {
	name := out.Name
	if name == "" {
		name = Name(out, d.KeepNames)
	}
	dest := filepath.Join(d.Path, name)
	slog.Debug("writing", "file", dest, "bytes", len(out.BMP))

	if err := WriteFile(dest, out.BMP, d.Force); err != nil {
		return err
	}

	if d.Palettes && out.Palette != nil {
		palDest := strings.TrimSuffix(dest, ".bmp") + ".pal"
		if err := WritePalette(palDest, out.Palette, d.Force); err != nil {
			return err
		}
	}
	return nil
}

func WritePalette(path string, pal *palette.Palette, force bool) error {
	var buf bytes.Buffer
	if _, err := palette.WriteRIFF(&buf, pal); err != nil {
		return fmt.Errorf("could not encode palette %q: %w", path, err)
	}
	return WriteFile(path, buf.Bytes(), force)
}
