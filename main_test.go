package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"palbmp/bmp8"
	"palbmp/convert"
	"palbmp/palette"

	"github.com/alecthomas/kong"
	"golang.org/x/image/bmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "palbmp.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestYAMLConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
mode: per-image
row_order: top-down
workers: 3
keep-names: true
log_level: debug
`)

	var cli CLI
	parser, err := kong.New(&cli, kong.Configuration(yamlConfig, path))
	if err != nil {
		t.Fatalf("kong.New() = %v", err)
	}
	if _, err := parser.Parse([]string{"convert", "in.png"}); err != nil {
		t.Fatalf("Parse() = %v", err)
	}

	c := cli.Convert
	if c.Mode != "per-image" || c.PalMode != palette.PerImage {
		t.Errorf("mode = %q (%v), want per-image", c.Mode, c.PalMode)
	}
	if c.RowOrder != "top-down" || c.Order != bmp8.TopDown {
		t.Errorf("row order = %q (%v), want top-down", c.RowOrder, c.Order)
	}
	if c.Workers != 3 {
		t.Errorf("workers = %d, want 3", c.Workers)
	}
	if !c.KeepNames {
		t.Error("keep-names not applied")
	}
	if cli.LogLevel != "debug" {
		t.Errorf("log level = %q, want debug", cli.LogLevel)
	}
}

func TestYAMLConfigFlagsWin(t *testing.T) {
	path := writeConfig(t, "mode: per-image\n")

	var cli CLI
	parser, err := kong.New(&cli, kong.Configuration(yamlConfig, path))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.Parse([]string{"convert", "--mode", "shared", "in.png"}); err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	if cli.Convert.PalMode != palette.Shared {
		t.Errorf("mode = %v, want shared", cli.Convert.PalMode)
	}
}

func TestYAMLConfigInvalid(t *testing.T) {
	if _, err := yamlConfig(strings.NewReader("mode: [unterminated")); err == nil {
		t.Error("yamlConfig() = nil, want error")
	}
	if _, err := yamlConfig(strings.NewReader("")); err != nil {
		t.Errorf("yamlConfig(empty) = %v, want nil", err)
	}
}

func TestDefaults(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Configuration(yamlConfig))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.Parse([]string{"convert", "a.png", "b.png"}); err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	c := cli.Convert
	if c.PalMode != palette.Shared || c.Order != bmp8.ReversedPad {
		t.Errorf("defaults = %v/%v, want shared/reversed-pad", c.PalMode, c.Order)
	}
	if !filepath.IsAbs(c.Dest) || filepath.Base(c.Dest) != "bmp" {
		t.Errorf("dest = %q, want absolute .../bmp", c.Dest)
	}
	if len(c.Inputs) != 2 {
		t.Errorf("inputs = %v", c.Inputs)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, false, "info", "auto")
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hidden")
	logger.Info("stats", "processed", 2)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not a single JSON record: %q", buf.String())
	}
	if rec["msg"] != "stats" || rec["processed"] != float64(2) {
		t.Errorf("record = %v", rec)
	}

	buf.Reset()
	logger, err = newLogger(&buf, true, "warn", "auto")
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if out := buf.String(); !strings.Contains(out, "msg=shown") || strings.Contains(out, "hidden") {
		t.Errorf("text output = %q", out)
	}

	if _, err := newLogger(&buf, false, "loud", "text"); err == nil {
		t.Error("newLogger(loud) = nil, want error")
	}
}

func writePNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := range 2 {
		for x := range 3 {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Configuration(yamlConfig))
	if err != nil {
		t.Fatal(err)
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kctx.Run(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func readPalette(t *testing.T, path string) palette.Palette {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	pals, err := palette.ReadRIFF(f)
	if err != nil {
		t.Fatalf("ReadRIFF(%s) = %v", path, err)
	}
	if len(pals) != 1 {
		t.Fatalf("%s holds %d palettes, want 1", path, len(pals))
	}
	return pals[0]
}

func pixelAt(t *testing.T, path string) color.RGBA {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatalf("bmp.Decode(%s) = %v", path, err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("%s bounds = %v, want 3x2", path, b)
	}
	return color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA)
}

var (
	red  = color.NRGBA{R: 0xFF, A: 0xFF}
	blue = color.NRGBA{B: 0xFF, A: 0xFF}
)

func TestConvertShared(t *testing.T) {
	in := t.TempDir()
	writePNG(t, filepath.Join(in, "a.png"), red)
	writePNG(t, filepath.Join(in, "b.png"), blue)
	dest := filepath.Join(t.TempDir(), "out")
	palOut := filepath.Join(t.TempDir(), "shared.pal")

	if err := runCLI(t, "convert", "--dest", dest, "--workers", "2", "--palette-out", palOut, in); err != nil {
		t.Fatalf("convert = %v", err)
	}

	for name, want := range map[string]color.NRGBA{"image_1.bmp": red, "image_2.bmp": blue} {
		if got := pixelAt(t, filepath.Join(dest, name)); got.R != want.R || got.B != want.B {
			t.Errorf("%s pixel = %v, want %v", name, got, want)
		}
	}

	pal := readPalette(t, palOut)
	if pal[0] != (palette.Color{}) || pal[1] != (palette.Color{R: 0xFF}) || pal[2] != (palette.Color{B: 0xFF}) {
		t.Errorf("shared palette starts %v, want black, red, blue", pal[:3])
	}
}

func TestConvertPerImagePalettes(t *testing.T) {
	in := t.TempDir()
	writePNG(t, filepath.Join(in, "a.png"), red)
	writePNG(t, filepath.Join(in, "b.png"), blue)
	dest := t.TempDir()

	if err := runCLI(t, "convert", "--dest", dest, "--mode", "per-image", "--palettes", in); err != nil {
		t.Fatalf("convert = %v", err)
	}
	if pal := readPalette(t, filepath.Join(dest, "image_1.pal")); pal[0] != (palette.Color{R: 0xFF}) {
		t.Errorf("image_1.pal slot 0 = %v, want red", pal[0])
	}
	if pal := readPalette(t, filepath.Join(dest, "image_2.pal")); pal[0] != (palette.Color{B: 0xFF}) {
		t.Errorf("image_2.pal slot 0 = %v, want blue", pal[0])
	}
}

func TestConvertPaletteOutNeedsShared(t *testing.T) {
	in := filepath.Join(t.TempDir(), "a.png")
	writePNG(t, in, red)
	err := runCLI(t, "convert", "--dest", t.TempDir(), "--mode", "per-image", "--palette-out", "x.pal", in)
	if err == nil || !strings.Contains(err.Error(), "palette-out") {
		t.Errorf("convert = %v, want --palette-out error", err)
	}
}

func TestConvertCountsFailures(t *testing.T) {
	in := t.TempDir()
	writePNG(t, filepath.Join(in, "a.png"), red)
	if err := os.WriteFile(filepath.Join(in, "b.png"), []byte("not a picture"), 0o644); err != nil {
		t.Fatal(err)
	}
	dest := t.TempDir()
	palOut := filepath.Join(t.TempDir(), "missing", "shared.pal")

	err := runCLI(t, "convert", "--dest", dest, "--palette-out", palOut, in)
	if err == nil || !strings.Contains(err.Error(), "error processing 2 files") {
		t.Errorf("convert = %v, want 2 errors (unreadable input, palette)", err)
	}
	if got := pixelAt(t, filepath.Join(dest, "image.bmp")); got.R != 0xFF {
		t.Errorf("image.bmp pixel = %v, want red", got)
	}
	if _, err := os.Stat(palOut); err == nil {
		t.Error("palette written into a missing folder")
	}
}

func TestConvertNothingReadable(t *testing.T) {
	in := filepath.Join(t.TempDir(), "a.png")
	if err := os.WriteFile(in, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := runCLI(t, "convert", "--dest", t.TempDir(), in)
	if !errors.Is(err, convert.ErrEmptyInput) {
		t.Errorf("convert = %v, want ErrEmptyInput", err)
	}
}
