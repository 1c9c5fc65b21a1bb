// Package raster turns encoded pictures into flat RGBA pixel buffers.
package raster

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ErrShapeMismatch is returned when a buffer length does not agree with the
// dimensions it is declared with.
var ErrShapeMismatch = errors.New("buffer does not match image dimensions")

// Pixels is a decoded picture: Width*Height RGBA quadruplets, row-major, top
// row first. Alpha is carried but not interpreted by the palette code.
type Pixels struct {
	Width  int
	Height int
	Pix    []uint8
}

func (p Pixels) Len() int {
	return len(p.Pix) / 4
}

func (p Pixels) RGB(i int) (r, g, b uint8) {
	o := i * 4
	return p.Pix[o], p.Pix[o+1], p.Pix[o+2]
}

func (p Pixels) Check() error {
	return CheckShape(p.Width, p.Height, len(p.Pix), 4)
}

// CheckShape validates that n bytes hold width*height samples of bpp bytes.
func CheckShape(width, height, n, bpp int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: invalid size %dx%d", ErrShapeMismatch, width, height)
	}
	if want := width * height * bpp; n != want {
		return fmt.Errorf("%w: %dx%d needs %d bytes, got %d", ErrShapeMismatch, width, height, want, n)
	}
	return nil
}

// FromImage copies img into a Pixels buffer. Colors are stored
// non-premultiplied, the same way a browser canvas exposes them.
func FromImage(img image.Image) Pixels {
	b := img.Bounds()
	if nrgba, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) && nrgba.Stride == 4*b.Dx() {
		return Pixels{Width: b.Dx(), Height: b.Dy(), Pix: nrgba.Pix[:4*b.Dx()*b.Dy()]}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return Pixels{Width: b.Dx(), Height: b.Dy(), Pix: dst.Pix}
}
