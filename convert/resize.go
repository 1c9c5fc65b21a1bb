package convert

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"golang.org/x/image/draw"
)

// Resize scales pictures to fit Width x Height. A zero dimension keeps the
// source size along that axis.
type Resize struct {
	Width  int
	Height int
	// Crop trims the source to the destination aspect ratio.
	Crop bool
	// Fill letterboxes the picture on this color when not cropping. Nil
	// shrinks the destination to the source aspect ratio instead.
	Fill color.Color
}

func (r Resize) Apply(logger *slog.Logger, img image.Image) (image.Image, error) {
	if r.Width < 0 || r.Height < 0 || (r.Width == 0 && r.Height == 0) {
		return nil, fmt.Errorf("invalid resize dimensions %dx%d", r.Width, r.Height)
	}

	src := img.Bounds()
	if src.Empty() {
		return nil, errors.New("empty image")
	}
	srcW, srcH := float64(src.Dx()), float64(src.Dy())

	dstW, dstH := float64(r.Width), float64(r.Height)
	if dstW == 0 {
		dstW = srcW
	}
	if dstH == 0 {
		dstH = srcH
	}
	if dstW == srcW && dstH == srcH {
		return img, nil
	}

	canvas := image.Rect(0, 0, int(dstW), int(dstH))
	target := canvas

	srcAR, dstAR := srcW/srcH, dstW/dstH
	switch {
	case r.Crop && srcAR < dstAR:
		dh := int(math.Round((srcH - srcW/dstAR) / 2))
		src.Min.Y += dh
		src.Max.Y -= dh
	case r.Crop && srcAR > dstAR:
		dw := int(math.Round((srcW - srcH*dstAR) / 2))
		src.Min.X += dw
		src.Max.X -= dw
	case srcAR < dstAR:
		w := int(math.Round(dstH * srcAR))
		if r.Fill == nil {
			canvas.Max.X, target.Max.X = w, w
		} else {
			pad := (int(dstW) - w) / 2
			target.Min.X += pad
			target.Max.X = target.Min.X + w
		}
	case srcAR > dstAR:
		h := int(math.Round(dstW / srcAR))
		if r.Fill == nil {
			canvas.Max.Y, target.Max.Y = h, h
		} else {
			pad := (int(dstH) - h) / 2
			target.Min.Y += pad
			target.Max.Y = target.Min.Y + h
		}
	}

	logger.Info("resizing", "width", target.Dx(), "height", target.Dy())
	dst := image.NewNRGBA(canvas)
	if r.Fill != nil && target != canvas {
		draw.Draw(dst, canvas, image.NewUniform(r.Fill), image.Point{}, draw.Src)
	}
	draw.CatmullRom.Scale(dst, target, img, src, draw.Over, nil)

	return dst, nil
}

// ParseColor reads #RGB, #RGBA, #RRGGBB or #RRGGBBAA.
func ParseColor(s string) (color.Color, error) {
	if len(s) == 0 || s[0] != '#' {
		return nil, fmt.Errorf("invalid color %q, should start with #", s)
	}

	digits := s[1:]
	var v [4]uint8
	v[3] = 0xFF
	switch len(digits) {
	case 3, 4:
		for i := range len(digits) {
			var d uint8
			if _, err := fmt.Sscanf(digits[i:i+1], "%1x", &d); err != nil {
				return nil, fmt.Errorf("could not read color %q: %w", s, err)
			}
			v[i] = d<<4 | d
		}
	case 6, 8:
		for i := range len(digits) / 2 {
			if _, err := fmt.Sscanf(digits[2*i:2*i+2], "%2x", &v[i]); err != nil {
				return nil, fmt.Errorf("could not read color %q: %w", s, err)
			}
		}
	default:
		return nil, fmt.Errorf("invalid color %q, should be #RGB, #RGBA, #RRGGBB or #RRGGBBAA", s)
	}

	return color.NRGBA{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
}
