package convert

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
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

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.png"} {
		writePNG(t, filepath.Join(dir, name), 1, 1, color.White)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	single := filepath.Join(t.TempDir(), "c.png")
	writePNG(t, single, 1, 1, color.Black)

	paths, err := Expand([]string{single, dir})
	if err != nil {
		t.Fatalf("Expand() = %v", err)
	}
	want := []string{single, filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")}
	if len(paths) != len(want) {
		t.Fatalf("Expand() = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("path %d = %q, want %q", i, paths[i], want[i])
		}
	}

	if _, err := Expand([]string{filepath.Join(dir, "missing.png")}); err == nil {
		t.Error("Expand(missing) = nil, want error")
	}
}

func TestLoadKeepsOrderAndSkipsFailures(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "1.png")
	broken := filepath.Join(dir, "2.png")
	third := filepath.Join(dir, "3.png")
	writePNG(t, first, 2, 1, color.NRGBA{R: 255, A: 255})
	if err := os.WriteFile(broken, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	writePNG(t, third, 1, 3, color.NRGBA{B: 255, A: 255})

	images, failed := Load(discard, []string{first, broken, third}, 4, nil)
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	if len(images) != 2 {
		t.Fatalf("images = %d, want 2", len(images))
	}
	if images[0].Source != first || images[1].Source != third {
		t.Errorf("sources = %q, %q", images[0].Source, images[1].Source)
	}
	if p := images[1].Pixels; p.Width != 1 || p.Height != 3 {
		t.Errorf("second image = %dx%d, want 1x3", p.Width, p.Height)
	}
}

func TestLoadAppliesPrepare(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	writePNG(t, path, 8, 4, color.NRGBA{G: 255, A: 255})

	images, failed := Load(discard, []string{path}, 1, Resize{Width: 4}.Apply)
	if failed != 0 || len(images) != 1 {
		t.Fatalf("Load() = %d images, %d failed", len(images), failed)
	}
	if p := images[0].Pixels; p.Width != 4 || p.Height != 2 {
		t.Errorf("resized to %dx%d, want 4x2", p.Width, p.Height)
	}
}
