package palette

import (
	"palbmp/raster"
)

// Color is an opaque RGB triple. Two colors are equal only when every channel
// matches.
type Color struct {
	R, G, B uint8
}

// Table collects distinct colors in first-seen order up to the capacity of
// its mode. Once assigned, an index never changes.
type Table struct {
	mode    Mode
	index   map[Color]int
	colors  []Color
	skipped int
}

func NewTable(mode Mode) *Table {
	return &Table{
		mode:  mode,
		index: make(map[Color]int, mode.Capacity()),
	}
}

func (t *Table) Mode() Mode {
	return t.mode
}

func (t *Table) Len() int {
	return len(t.colors)
}

func (t *Table) Full() bool {
	return len(t.colors) >= t.mode.Capacity()
}

// Skipped counts pixels whose color was left out because the table was full.
func (t *Table) Skipped() int {
	return t.skipped
}

func (t *Table) Colors() []Color {
	return append([]Color(nil), t.colors...)
}

func (t *Table) Index(c Color) (int, bool) {
	i, ok := t.index[c]
	return i, ok
}

func (t *Table) Add(c Color) (int, bool) {
	if i, ok := t.index[c]; ok {
		return i, true
	}
	if t.Full() {
		t.skipped++
		return 0, false
	}

	i := t.mode.Base() + len(t.colors)
	t.index[c] = i
	t.colors = append(t.colors, c)
	return i, true
}

// Scan visits every pixel of p once, in row-major order, adding its color.
// Alpha is ignored. A malformed buffer leaves the table untouched.
func (t *Table) Scan(p raster.Pixels) error {
	if err := p.Check(); err != nil {
		return err
	}

	for i := range p.Len() {
		r, g, b := p.RGB(i)
		t.Add(Color{R: r, G: g, B: b})
	}
	return nil
}
