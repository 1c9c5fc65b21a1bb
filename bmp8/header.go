// Package bmp8 writes and inspects uncompressed 8 bits per pixel palette
// indexed Windows bitmaps (BITMAPINFOHEADER layout).
package bmp8

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"palbmp/palette"
)

const (
	FileHeaderLen = 14
	InfoHeaderLen = 40
	PaletteLen    = palette.Size * 4
	PixelOffset   = FileHeaderLen + InfoHeaderLen + PaletteLen

	bitsPerPixel = 8
	biRGB        = 0
)

var ErrNotIndexedBMP = errors.New("not an uncompressed 8-bit indexed BMP")

// FileHeader is the BITMAPFILEHEADER structure.
type FileHeader struct {
	Type      [2]byte // "BM"
	Size      uint32  // whole file, in bytes
	Reserved1 uint16
	Reserved2 uint16
	OffBits   uint32 // offset of the pixel array
}

// InfoHeader is the BITMAPINFOHEADER structure.
type InfoHeader struct {
	Size            uint32
	Width           int32
	Height          int32 // negative for top-down row order
	Planes          uint16
	BitCount        uint16
	Compression     uint32
	SizeImage       uint32
	XPixelsPerM     int32
	YPixelsPerM     int32
	ColorsUsed      uint32
	ColorsImportant uint32
}

type Header struct {
	File FileHeader
	Info InfoHeader
}

// RowSize returns the number of bytes of one pixel row, padded to a multiple
// of 4.
func RowSize(width int) int {
	return (width + 3) &^ 3
}

func FileSize(width, height int) int {
	return PixelOffset + RowSize(width)*height
}

func newHeader(width, height int) Header {
	imageSize := uint32(RowSize(width) * height)
	return Header{
		File: FileHeader{
			Type:    [2]byte{'B', 'M'},
			Size:    PixelOffset + imageSize,
			OffBits: PixelOffset,
		},
		Info: InfoHeader{
			Size:        InfoHeaderLen,
			Width:       int32(width),
			Height:      -int32(height),
			Planes:      1,
			BitCount:    bitsPerPixel,
			Compression: biRGB,
			SizeImage:   imageSize,
			ColorsUsed:  palette.Size,
		},
	}
}

func (h Header) Width() int {
	return int(h.Info.Width)
}

func (h Header) Height() int {
	if h.Info.Height < 0 {
		return -int(h.Info.Height)
	}
	return int(h.Info.Height)
}

func (h Header) TopDown() bool {
	return h.Info.Height < 0
}

// ReadHeader decodes and validates the headers of an 8-bit indexed BMP.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h.File); err != nil {
		return h, fmt.Errorf("could not read file header: %w", err)
	}
	if h.File.Type != [2]byte{'B', 'M'} {
		return h, fmt.Errorf("%w: bad magic % x", ErrNotIndexedBMP, h.File.Type[:])
	}
	if err := binary.Read(r, binary.LittleEndian, &h.Info); err != nil {
		return h, fmt.Errorf("could not read info header: %w", err)
	}

	switch {
	case h.Info.Size != InfoHeaderLen:
		return h, fmt.Errorf("%w: info header size %d", ErrNotIndexedBMP, h.Info.Size)
	case h.Info.BitCount != bitsPerPixel:
		return h, fmt.Errorf("%w: %d bits per pixel", ErrNotIndexedBMP, h.Info.BitCount)
	case h.Info.Compression != biRGB:
		return h, fmt.Errorf("%w: compression %d", ErrNotIndexedBMP, h.Info.Compression)
	case h.Info.Planes != 1:
		return h, fmt.Errorf("%w: %d planes", ErrNotIndexedBMP, h.Info.Planes)
	case h.Info.Width <= 0 || h.Info.Height == 0:
		return h, fmt.Errorf("%w: invalid size %dx%d", ErrNotIndexedBMP, h.Info.Width, h.Info.Height)
	}

	colors := h.Info.ColorsUsed
	if colors == 0 {
		colors = palette.Size
	}
	if want := uint32(FileHeaderLen+InfoHeaderLen) + colors*4; h.File.OffBits != want {
		return h, fmt.Errorf("%w: pixel offset %d, want %d", ErrNotIndexedBMP, h.File.OffBits, want)
	}

	return h, nil
}
