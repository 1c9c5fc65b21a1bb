// Package palette builds fixed size 256 color palettes from pixel buffers and
// maps pixels onto them.
package palette

import (
	"image/color"
)

type Palette [Size]Color

// Build finalizes t into a palette.
//
// Per-image tables fill slots from 0. Shared tables are shifted by one: slot 0
// is black and the first collected color lands in slot 1, so the collector
// index (base 2) runs one ahead of the palette slot. Remaining slots are black.
func Build(t *Table) Palette {
	var pal Palette
	switch t.mode {
	case Shared:
		copy(pal[1:], t.colors)
	default:
		copy(pal[:], t.colors)
	}
	return pal
}

func FromRGBA(pal color.Palette) Palette {
	var p Palette
	for i, col := range pal {
		if i >= Size {
			break
		}
		c := color.RGBAModel.Convert(col).(color.RGBA)
		p[i] = Color{R: c.R, G: c.G, B: c.B}
	}
	return p
}
