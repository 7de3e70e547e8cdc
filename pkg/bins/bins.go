// Package bins is the spatial collision index for the frozen aggregate.
//
// Particles live in one flat slice sorted by cell id, and offsets[i] is the
// index of the first particle of cell i (offsets[cells] is the particle
// count). The grid covers a rectangle that only ever grows: interior inserts
// shift into place cheaply, while a particle landing near the border widens
// the rectangle with some slack and re-buckets everything.
package bins

import (
	"iter"
	"math"
	"slices"

	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

// Config holds the index tunables.
type Config struct {
	// CellCount is the number of cells along each axis.
	CellCount int `json:"cellCount"`
	// MarginMin is the distance to an edge below which an insert rebuilds.
	MarginMin float64 `json:"marginMin"`
	// MarginMax is the distance a grown edge is pushed past the particle.
	MarginMax float64 `json:"marginMax"`
	// ParticleRadius sets the overlap distance (2*ParticleRadius) and the probe offsets.
	ParticleRadius float64 `json:"particleRadius"`
}

// Index owns every frozen particle.
// It is not safe for concurrent use.
type Index struct {
	cfg       Config
	particles []particle.Frozen
	offsets   []int
	box       r2.Box
	rebuilds  int
}

// New returns an empty index.
func New(cfg Config) *Index {
	return &Index{
		cfg:     cfg,
		offsets: make([]int, cfg.CellCount*cfg.CellCount+1),
	}
}

// Len is the number of frozen particles.
func (b *Index) Len() int {
	return len(b.particles)
}

// CellCount is the number of cells along each axis.
func (b *Index) CellCount() int {
	return b.cfg.CellCount
}

// Extent is the indexed rectangle.
func (b *Index) Extent() r2.Box {
	return b.box
}

// Rebuilds counts the inserts that had to grow the rectangle.
func (b *Index) Rebuilds() int {
	return b.rebuilds
}

// All yields the frozen particles in bucket order.
// The particles must not be inserted into while iterating.
func (b *Index) All() iter.Seq[particle.Frozen] {
	return func(yield func(particle.Frozen) bool) {
		for _, p := range b.particles {
			if !yield(p) {
				return
			}
		}
	}
}

// CellOf maps pos to its cell id under the current rectangle.
// It returns false when pos lies outside the grid.
func (b *Index) CellOf(pos geometry.Vector2D) (int, bool) {
	return cellOf(b.box, b.cfg.CellCount, pos)
}

func cellOf(box r2.Box, n int, pos geometry.Vector2D) (int, bool) {
	x, ok := axisCell(pos.X, box.Min.X, box.Max.X, n)
	if !ok {
		return 0, false
	}
	y, ok := axisCell(pos.Y, box.Min.Y, box.Max.Y, n)
	if !ok {
		return 0, false
	}
	return x + y*n, true
}

func axisCell(v, lo, hi float64, n int) (int, bool) {
	f := (v - lo) / (hi - lo) * float64(n)
	// written so that NaN from an empty rectangle fails too
	if !(f >= 0 && f < float64(n)) {
		return 0, false
	}
	return int(math.Floor(f)), true
}

// Insert adds a frozen particle.
func (b *Index) Insert(p particle.Frozen) {
	if b.hasExtent() && b.inInterior(p.Pos) {
		if cell, ok := b.CellOf(p.Pos); ok {
			at := b.offsets[cell]
			b.particles = slices.Insert(b.particles, at, p)
			for i := cell + 1; i < len(b.offsets); i++ {
				b.offsets[i]++
			}
			return
		}
	}
	b.grow(p.Pos)
	b.particles = append(b.particles, p)
	b.rebucket()
}

func (b *Index) hasExtent() bool {
	return b.box.Max.X > b.box.Min.X && b.box.Max.Y > b.box.Min.Y
}

// inInterior reports whether pos is farther than MarginMin from every edge.
func (b *Index) inInterior(pos geometry.Vector2D) bool {
	m := b.cfg.MarginMin
	return pos.X-b.box.Min.X > m && b.box.Max.X-pos.X > m &&
		pos.Y-b.box.Min.Y > m && b.box.Max.Y-pos.Y > m
}

// grow pushes every side that pos is too close to (or beyond) so that pos
// ends up MarginMax inside it. Sides never move inwards. The first particle
// gets a square of half-size MarginMax.
func (b *Index) grow(pos geometry.Vector2D) {
	m := b.cfg.MarginMax
	if !b.hasExtent() {
		b.box = r2.Box{
			Min: r2.Vec{X: pos.X - m, Y: pos.Y - m},
			Max: r2.Vec{X: pos.X + m, Y: pos.Y + m},
		}
		b.rebuilds++
		return
	}
	mMin := b.cfg.MarginMin
	if pos.X-b.box.Min.X <= mMin {
		b.box.Min.X = math.Min(b.box.Min.X, pos.X-m)
	}
	if b.box.Max.X-pos.X <= mMin {
		b.box.Max.X = math.Max(b.box.Max.X, pos.X+m)
	}
	if pos.Y-b.box.Min.Y <= mMin {
		b.box.Min.Y = math.Min(b.box.Min.Y, pos.Y-m)
	}
	if b.box.Max.Y-pos.Y <= mMin {
		b.box.Max.Y = math.Max(b.box.Max.Y, pos.Y+m)
	}
	b.rebuilds++
}

// rebucket sorts all particles by cell under the current rectangle and
// rebuilds the offset table. It is a counting sort, so it also keeps the
// relative order of particles sharing a cell.
func (b *Index) rebucket() {
	n := b.cfg.CellCount
	cells := n * n
	if len(b.offsets) != cells+1 {
		b.offsets = make([]int, cells+1)
	} else {
		clear(b.offsets)
	}

	ids := make([]int, len(b.particles))
	for i, p := range b.particles {
		cell, ok := cellOf(b.box, n, p.Pos)
		if !ok {
			// only reachable through float rounding on the very edge
			cell = clampCell(b.box, n, p.Pos)
		}
		ids[i] = cell
		b.offsets[cell+1]++
	}
	for i := 1; i <= cells; i++ {
		b.offsets[i] += b.offsets[i-1]
	}

	next := slices.Clone(b.offsets[:cells])
	sorted := make([]particle.Frozen, len(b.particles))
	for i, p := range b.particles {
		sorted[next[ids[i]]] = p
		next[ids[i]]++
	}
	b.particles = sorted
}

func clampCell(box r2.Box, n int, pos geometry.Vector2D) int {
	clampAxis := func(v, lo, hi float64) int {
		f := math.Floor((v - lo) / (hi - lo) * float64(n))
		return int(math.Max(0, math.Min(float64(n-1), f)))
	}
	return clampAxis(pos.X, box.Min.X, box.Max.X) + clampAxis(pos.Y, box.Min.Y, box.Max.Y)*n
}

// Reconfigure applies new tunables. Changing the cell count re-buckets the
// existing particles; the rectangle is kept.
func (b *Index) Reconfigure(cfg Config) {
	old := b.cfg.CellCount
	b.cfg = cfg
	if cfg.CellCount != old {
		b.rebucket()
	}
}

// bucket returns the particles of one cell.
func (b *Index) bucket(cell int) []particle.Frozen {
	return b.particles[b.offsets[cell]:b.offsets[cell+1]]
}
