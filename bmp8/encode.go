package bmp8

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"palbmp/palette"
	"palbmp/raster"
)

var ErrUnknownRowOrder = errors.New("unknown row order")

// RowOrder selects how source rows are laid out in the pixel array. Both
// orders are written with a negative (top-down) height.
type RowOrder int

const (
	// TopDown stores source row y as on-disk row y, so readers honouring the
	// negative height show the image upright.
	TopDown RowOrder = iota
	// ReversedPad walks source rows bottom to top and stores row y at on-disk
	// row H-1-y. Together with the negative height the picture shows upside
	// down. Files produced by the browser tool look like this.
	ReversedPad
)

func (o RowOrder) String() string {
	switch o {
	case TopDown:
		return "top-down"
	case ReversedPad:
		return "reversed-pad"
	default:
		return fmt.Sprintf("RowOrder(%d)", int(o))
	}
}

func ParseRowOrder(s string) (RowOrder, error) {
	switch s {
	case "top-down":
		return TopDown, nil
	case "reversed-pad":
		return ReversedPad, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRowOrder, s)
	}
}

// Encode serializes an indexed image into a complete BMP file.
func Encode(width, height int, indices palette.Indexed, pal *palette.Palette, order RowOrder) ([]byte, error) {
	if err := checkLimits(width, height); err != nil {
		return nil, err
	}
	if err := raster.CheckShape(width, height, len(indices), 1); err != nil {
		return nil, err
	}
	if order != TopDown && order != ReversedPad {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRowOrder, int(order))
	}

	buf := make([]byte, FileSize(width, height))

	h := newHeader(width, height)
	if _, err := binary.Encode(buf[:FileHeaderLen], binary.LittleEndian, &h.File); err != nil {
		return nil, fmt.Errorf("could not encode file header: %w", err)
	}
	if _, err := binary.Encode(buf[FileHeaderLen:FileHeaderLen+InfoHeaderLen], binary.LittleEndian, &h.Info); err != nil {
		return nil, fmt.Errorf("could not encode info header: %w", err)
	}

	// palette entries are stored blue first with a zero reserved byte
	entries := buf[FileHeaderLen+InfoHeaderLen : PixelOffset]
	for i, c := range pal {
		entries[i*4+0] = c.B
		entries[i*4+1] = c.G
		entries[i*4+2] = c.R
	}

	rowSize := RowSize(width)
	pix := buf[PixelOffset:]
	switch order {
	case TopDown:
		for y := range height {
			copy(pix[y*rowSize:y*rowSize+width], indices[y*width:(y+1)*width])
		}
	case ReversedPad:
		for y := height - 1; y >= 0; y-- {
			row := (height - 1 - y) * rowSize
			copy(pix[row:row+width], indices[y*width:(y+1)*width])
		}
	}

	return buf, nil
}

// header fields are 32 bits wide
func checkLimits(width, height int) error {
	if width > math.MaxInt32 || height > math.MaxInt32 {
		return fmt.Errorf("%w: %dx%d exceeds the BMP dimension limit", raster.ErrShapeMismatch, width, height)
	}
	if width > 0 && height > 0 && uint64(FileSize(width, height)) > math.MaxUint32 {
		return fmt.Errorf("%w: %dx%d exceeds the 4 GiB BMP size limit", raster.ErrShapeMismatch, width, height)
	}
	return nil
}

func Write(w io.Writer, width, height int, indices palette.Indexed, pal *palette.Palette, order RowOrder) (int64, error) {
	buf, err := Encode(width, height, indices, pal, order)
	if err != nil {
		return 0, err
	}

	n, err := w.Write(buf)
	if err != nil {
		return int64(n), fmt.Errorf("could not write bitmap: %w", err)
	} else if n != len(buf) {
		return int64(n), fmt.Errorf("could not write bitmap: wrote only %d/%d bytes", n, len(buf))
	}
	return int64(n), nil
}
