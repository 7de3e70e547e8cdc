package bins

import (
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/particle"
)

// probeDirs are the offsets, in units of the particle radius, of the points
// whose cells are searched after the home cell.
var probeDirs = [8]geometry.Vector2D{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// Query returns a frozen particle overlapping a particle centered at pos.
//
// It scans the home cell of pos, then the cells containing pos shifted by
// the particle radius in each of the 8 directions. This is not a full 3x3
// neighborhood scan: a particle just across a cell border can be missed when
// pos is farther than one radius from that border. Use QueryExact when that
// matters more than speed.
func (b *Index) Query(pos geometry.Vector2D) (particle.Frozen, bool) {
	home, ok := b.CellOf(pos)
	if !ok {
		return particle.Frozen{}, false
	}
	if p, ok := b.scan(home, pos); ok {
		return p, true
	}

	r := b.cfg.ParticleRadius
	var seen [8]int
	nSeen := 0
probes:
	for _, d := range probeDirs {
		cell, ok := b.CellOf(pos.Add(d.Mul(r)))
		if !ok || cell == home {
			continue
		}
		for _, s := range seen[:nSeen] {
			if s == cell {
				continue probes
			}
		}
		seen[nSeen] = cell
		nSeen++
		if p, ok := b.scan(cell, pos); ok {
			return p, true
		}
	}
	return particle.Frozen{}, false
}

// QueryExact is Query over the whole 3x3 block of cells around pos. It finds
// every overlap as long as a cell is at least two radii wide.
func (b *Index) QueryExact(pos geometry.Vector2D) (particle.Frozen, bool) {
	home, ok := b.CellOf(pos)
	if !ok {
		return particle.Frozen{}, false
	}
	n := b.cfg.CellCount
	hx, hy := home%n, home/n
	for y := max(hy-1, 0); y <= min(hy+1, n-1); y++ {
		for x := max(hx-1, 0); x <= min(hx+1, n-1); x++ {
			if p, ok := b.scan(x+y*n, pos); ok {
				return p, true
			}
		}
	}
	return particle.Frozen{}, false
}

func (b *Index) scan(cell int, pos geometry.Vector2D) (particle.Frozen, bool) {
	r := b.cfg.ParticleRadius
	for _, other := range b.bucket(cell) {
		if particle.Overlaps(pos, other.Pos, r) {
			return other, true
		}
	}
	return particle.Frozen{}, false
}
