package dla

import (
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/bins"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/palette"
)

// Config is the full set of simulation tunables. The embedded bins.Config is
// handed to the spatial index as is.
type Config struct {
	bins.Config

	// Population
	ActiveTarget int `json:"activeTarget"`

	// Growth: how far the bounce circle and the camera sit from the aggregate
	WorldAggregateRatio float64 `json:"worldAggregateRatio"`
	ViewAggregateRatio  float64 `json:"viewAggregateRatio"`

	InitialWorldRadius   float64 `json:"initialWorldRadius"`
	InitialDisplayRadius float64 `json:"initialDisplayRadius"`
	ZoomSmoothness       float64 `json:"zoomSmoothness"` // in (0, 1), closer to 1 is slower

	// Motion
	StepSize     float64 `json:"stepSize"`     // 0 means ParticleRadius
	SpawnSpread  float64 `json:"spawnSpread"`  // radians around the inward direction
	BounceJitter float64 `json:"bounceJitter"` // radians added after a wall bounce

	// Color
	MutateAmount float64       `json:"mutateAmount"`
	SeedColor    palette.Color `json:"seedColor"`

	// ExactNeighbors switches collision lookups to the full 3x3 cell scan.
	ExactNeighbors bool `json:"exactNeighbors"`
}

// DefaultConfig returns the tunables of the interactive simulator.
func DefaultConfig() Config {
	return Config{
		Config: bins.Config{
			CellCount:      31,
			MarginMin:      0.1,
			MarginMax:      0.5,
			ParticleRadius: 0.01,
		},
		ActiveTarget:         200,
		WorldAggregateRatio:  2.0,
		ViewAggregateRatio:   1.2,
		InitialWorldRadius:   1.0,
		InitialDisplayRadius: 0.1,
		ZoomSmoothness:       0.99,
		SpawnSpread:          0.8,
		BounceJitter:         0.46,
		MutateAmount:         0.15,
		SeedColor:            palette.White,
	}
}

// Step is the distance travelled per tick by a unit-speed particle.
func (c Config) Step() float64 {
	if c.StepSize > 0 {
		return c.StepSize
	}
	return c.ParticleRadius
}
