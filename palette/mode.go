package palette

import (
	"errors"
	"fmt"
)

const Size = 256

var ErrUnknownMode = errors.New("unknown palette mode")

// Mode couples the collector capacity, the first assigned index and the
// quantizer fallback slot.
type Mode int

const (
	// Shared builds one palette for a whole batch. Slot 0 is kept black.
	Shared Mode = iota
	// PerImage builds a palette per image starting at slot 0.
	PerImage
)

func (m Mode) Capacity() int {
	if m == Shared {
		return Size - 1
	}
	return Size
}

func (m Mode) Base() int {
	if m == Shared {
		return 2
	}
	return 0
}

// Fallback is the index emitted for colors missing from the palette.
func (m Mode) Fallback() uint8 {
	if m == Shared {
		return 1
	}
	return 0
}

func (m Mode) String() string {
	switch m {
	case Shared:
		return "shared"
	case PerImage:
		return "per-image"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "shared":
		return Shared, nil
	case "per-image":
		return PerImage, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}
