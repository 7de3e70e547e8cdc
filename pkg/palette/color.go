// Package palette holds the particle color type and the bounded jitter that
// lets a branch drift in hue as it grows.
package palette

import (
	"fmt"

	"github.com/crazy3lf/colorconv"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/rng"
)

// Color is a straight (non premultiplied) RGBA color with channels in [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

var (
	White = Color{R: 1, G: 1, B: 1, A: 1}
	Black = Color{A: 1}
)

// RGBA implements color.Color so a Color can be handed to ebiten directly.
func (c Color) RGBA() (r, g, b, a uint32) {
	alpha := clamp01(c.A)
	r = uint32(clamp01(c.R)*alpha*0xffff + 0.5)
	g = uint32(clamp01(c.G)*alpha*0xffff + 0.5)
	b = uint32(clamp01(c.B)*alpha*0xffff + 0.5)
	a = uint32(alpha*0xffff + 0.5)
	return
}

func (c Color) String() string {
	return fmt.Sprintf("rgba(%.3f, %.3f, %.3f, %.3f)", c.R, c.G, c.B, c.A)
}

// Mutate adds an independent uniform offset in [-amount, amount) to each of
// R, G and B, clamping to [0, 1]. Alpha is kept.
func (c Color) Mutate(src rng.Source, amount float64) Color {
	return Color{
		R: clamp01(c.R + rng.Symmetric(src, amount)),
		G: clamp01(c.G + rng.Symmetric(src, amount)),
		B: clamp01(c.B + rng.Symmetric(src, amount)),
		A: c.A,
	}
}

// FromHSV builds an opaque color from hue in degrees [0, 360) and saturation
// and value in [0, 1].
func FromHSV(hue, saturation, value float64) (Color, error) {
	r, g, b, err := colorconv.HSVToRGB(hue, saturation, value)
	if err != nil {
		return Color{}, fmt.Errorf("invalid HSV color (%v, %v, %v): %w", hue, saturation, value, err)
	}
	return Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: 1,
	}, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
