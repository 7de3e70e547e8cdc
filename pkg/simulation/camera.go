package simulation

import (
	"math"

	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/geometry"
)

// Camera maps world coordinates to screen pixels. The display radius is the
// world distance shown between the screen center and its nearest edge.
type Camera struct {
	Width, Height int
	DisplayRadius float64
}

// Scale is the number of pixels per world unit.
func (c Camera) Scale() float64 {
	if c.DisplayRadius <= 0 {
		return 0
	}
	return float64(min(c.Width, c.Height)) / 2 / c.DisplayRadius
}

// PixelSize is the world size of one pixel.
func (c Camera) PixelSize() float64 {
	if s := c.Scale(); s > 0 {
		return 1 / s
	}
	return 0
}

// Project returns the screen position of p, y pointing up.
func (c Camera) Project(p geometry.Vector2D) (float32, float32) {
	s := c.Scale()
	return float32(float64(c.Width)/2 + p.X*s), float32(float64(c.Height)/2 - p.Y*s)
}

// LineWidth is the on-screen thickness of a branch between particles of the
// given radius, never thinner than one pixel.
func (c Camera) LineWidth(radius float64) float32 {
	return float32(math.Max(2*radius*c.Scale(), 1))
}

// growth is how much of a branch formed at tick born is drawn at tick now,
// eased with smoothstep over growTicks.
func growth(now, born uint64, growTicks int) float64 {
	if now < born {
		return 0
	}
	if growTicks <= 0 {
		return 1
	}
	t := math.Min(float64(now-born)/float64(growTicks), 1)
	return t * t * (3 - 2*t)
}
