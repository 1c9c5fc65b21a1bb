package palette

import (
	"palbmp/raster"
)

type Indexed []uint8

// Index is the reverse Color to slot lookup for one palette. It is read-only
// after construction and can be shared between goroutines.
type Index struct {
	slots    map[Color]uint8
	fallback uint8
}

// NewIndex builds the lookup for pal. When a color occupies several slots the
// lowest one wins, so black resolves to slot 0 in Shared mode.
func NewIndex(pal *Palette, mode Mode) *Index {
	idx := &Index{
		slots:    make(map[Color]uint8, Size),
		fallback: mode.Fallback(),
	}
	for i, c := range pal {
		if _, ok := idx.slots[c]; !ok {
			idx.slots[c] = uint8(i)
		}
	}
	return idx
}

func (x *Index) Lookup(c Color) (uint8, bool) {
	i, ok := x.slots[c]
	return i, ok
}

// Map returns the slot holding c, or the mode fallback slot. The fallback is
// not guaranteed to be black: in Shared mode slot 1 holds the first collected
// color.
func (x *Index) Map(c Color) uint8 {
	if i, ok := x.slots[c]; ok {
		return i
	}
	return x.fallback
}

func (x *Index) Quantize(p raster.Pixels) (Indexed, error) {
	if err := p.Check(); err != nil {
		return nil, err
	}

	out := make(Indexed, p.Len())
	for i := range out {
		r, g, b := p.RGB(i)
		out[i] = x.Map(Color{R: r, G: g, B: b})
	}
	return out, nil
}

// Quantize maps p onto pal. Callers converting several images against the
// same palette should build one Index and reuse it.
func Quantize(p raster.Pixels, pal *Palette, mode Mode) (Indexed, error) {
	return NewIndex(pal, mode).Quantize(p)
}
