package simulation

import (
	"slices"

	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/dla"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

// WorldSnapshot is a copy of everything the renderer needs, taken between
// ticks so the UI never reads the live simulation.
type WorldSnapshot struct {
	Frozen   []particle.Frozen
	Active   []geometry.Vector2D
	Branches []dla.Branch

	Extent    r2.Box
	CellCount int
	Rebuilds  int

	WorldRadius   float64
	DisplayRadius float64
	Ticks         uint64
	Paused        bool
}

func takeSnapshot(sim *dla.Simulation, paused bool) *WorldSnapshot {
	idx := sim.Index()
	snap := &WorldSnapshot{
		Frozen:        slices.Collect(idx.All()),
		Active:        make([]geometry.Vector2D, 0, len(sim.Active())),
		Branches:      slices.Clone(sim.Branches()),
		Extent:        idx.Extent(),
		CellCount:     idx.CellCount(),
		Rebuilds:      idx.Rebuilds(),
		WorldRadius:   sim.WorldRadius(),
		DisplayRadius: sim.DisplayRadius(),
		Ticks:         sim.Ticks(),
		Paused:        paused,
	}
	for _, a := range sim.Active() {
		snap.Active = append(snap.Active, a.Pos)
	}
	return snap
}
