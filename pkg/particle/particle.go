// Package particle defines the two kinds of particle in the aggregate:
// frozen ones, which are part of the structure, and active ones, which are
// still random-walking towards it.
package particle

import (
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/palette"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/rng"
)

// Frozen is a permanently placed particle. It never moves or changes color.
type Frozen struct {
	Pos   geometry.Vector2D `json:"pos"`
	Color palette.Color     `json:"color"`
}

// Active is a particle that is still moving.
type Active struct {
	Pos geometry.Vector2D
	Vel geometry.Vector2D
}

// Overlaps reports whether two particles of the given radius centered at a
// and b touch or overlap.
func Overlaps(a, b geometry.Vector2D, radius float64) bool {
	d := 2 * radius
	return a.DistanceSquaredTo(b) <= d*d
}

// Collides reports whether the moving particle touches f.
func (a Active) Collides(f Frozen, radius float64) bool {
	return Overlaps(a.Pos, f.Pos, radius)
}

// Advance moves the particle by vel*step.
func (a *Active) Advance(step float64) {
	a.Pos = a.Pos.Add(a.Vel.Mul(step))
}

// FreezeOnto turns a into a new Frozen particle stuck to hit: exactly
// 2*radius away from it, on the side a came from. When both centers coincide
// the side is drawn from src. The color is a jitter of hit's color.
func (a Active) FreezeOnto(hit Frozen, radius, mutate float64, src rng.Source) Frozen {
	dir := a.Pos.Sub(hit.Pos).Normalize()
	if dir.IsZero() {
		dir = geometry.NewVectorPolar(1, rng.Angle(src))
	}
	return Frozen{
		Pos:   hit.Pos.Add(dir.Mul(2 * radius)),
		Color: hit.Color.Mutate(src, mutate),
	}
}
