// Package dla runs diffusion-limited aggregation on an unbounded plane.
//
// Active particles are spawned on a circle around the aggregate, bounce
// inside it, and freeze when they touch a frozen particle. The circle (the
// world radius) and the camera distance grow with the aggregate.
//
// A Simulation is single-threaded: callers must not read it while a Tick,
// Collide, KinematicUpdate or Spawn call is running.
package dla

import (
	"math"

	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/bins"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/palette"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/particle"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/rng"
	"github.com/tochemey/goakt/v3/log"
)

// Branch links a newly frozen particle to the one it stuck to.
type Branch struct {
	From  geometry.Vector2D
	To    geometry.Vector2D
	Color palette.Color
	Tick  uint64
}

// Simulation owns the active particles and the index of frozen ones.
type Simulation struct {
	cfg    Config
	rng    rng.Source
	logger log.Logger

	index    *bins.Index
	active   []particle.Active
	branches []Branch

	worldRadius         float64
	displayRadius       float64
	displayRadiusTarget float64
	ticks               uint64
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithLogger sets the logger used for debug output.
func WithLogger(l log.Logger) Option {
	return func(s *Simulation) {
		s.logger = l
	}
}

// New creates a simulation with a single frozen particle at the origin.
func New(cfg Config, src rng.Source, opts ...Option) *Simulation {
	s := &Simulation{
		cfg:    cfg,
		rng:    src,
		logger: log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reset()
	return s
}

func (s *Simulation) reset() {
	s.index = bins.New(s.cfg.Config)
	s.index.Insert(particle.Frozen{Color: s.cfg.SeedColor})
	s.active = s.active[:0]
	s.branches = nil
	s.worldRadius = s.cfg.InitialWorldRadius
	s.displayRadius = s.cfg.InitialDisplayRadius
	s.displayRadiusTarget = s.cfg.InitialDisplayRadius
	s.ticks = 0
}

// Restart discards the aggregate and every active particle.
func (s *Simulation) Restart() {
	s.logger.Debugf("restarting after %d ticks with %d frozen particles", s.ticks, s.index.Len())
	s.reset()
}

// SetConfig replaces the tunables. Growth state is kept; the index is
// re-bucketed if its cell count changed.
func (s *Simulation) SetConfig(cfg Config) {
	s.cfg = cfg
	s.index.Reconfigure(cfg.Config)
}

func (s *Simulation) Config() Config { return s.cfg }

// Index is the spatial index holding the frozen aggregate. Read only.
func (s *Simulation) Index() *bins.Index { return s.index }

// Active is the current set of moving particles. Read only.
func (s *Simulation) Active() []particle.Active { return s.active }

// Branches lists every attachment in the order it happened. Read only.
func (s *Simulation) Branches() []Branch { return s.branches }

func (s *Simulation) WorldRadius() float64         { return s.worldRadius }
func (s *Simulation) DisplayRadius() float64       { return s.displayRadius }
func (s *Simulation) DisplayRadiusTarget() float64 { return s.displayRadiusTarget }
func (s *Simulation) Ticks() uint64                { return s.ticks }

// Tick advances the simulation by one step: move, freeze, then refill.
func (s *Simulation) Tick() {
	s.KinematicUpdate()
	s.Collide()
	s.Spawn()
	s.ticks++
}

// Spawn adds active particles on the world circle until ActiveTarget is
// reached. Each one heads inwards, give or take SpawnSpread radians.
func (s *Simulation) Spawn() {
	for len(s.active) < s.cfg.ActiveTarget {
		at := rng.Angle(s.rng)
		heading := at + math.Pi + rng.Symmetric(s.rng, s.cfg.SpawnSpread)
		s.active = append(s.active, particle.Active{
			Pos: geometry.NewVectorPolar(s.worldRadius, at),
			Vel: geometry.NewVectorPolar(1, heading),
		})
	}
}

// KinematicUpdate moves every active particle by one step. A particle that
// leaves the world circle is put back on it, mirrored about the inward
// normal and turned by a random angle of at most BounceJitter.
func (s *Simulation) KinematicUpdate() {
	step := s.cfg.Step()
	r := s.worldRadius
	for i := range s.active {
		p := &s.active[i]
		p.Advance(step)
		if p.Pos.LenSqr() < r*r {
			continue
		}
		out := p.Pos.Normalize()
		p.Pos = out.Mul(r)
		p.Vel = p.Vel.Reflect(out.Neg()).Rotate(rng.Symmetric(s.rng, s.cfg.BounceJitter))
	}
}

// Collide freezes every active particle that touches the aggregate and
// returns how many did. Particles frozen earlier in the same call can
// already catch later ones.
func (s *Simulation) Collide() int {
	r := s.cfg.ParticleRadius
	rebuilds := s.index.Rebuilds()
	frozen := 0

	kept := s.active[:0]
	for _, a := range s.active {
		hit, ok := s.query(a.Pos)
		if !ok {
			kept = append(kept, a)
			continue
		}
		f := a.FreezeOnto(hit, r, s.cfg.MutateAmount, s.rng)
		s.index.Insert(f)
		s.branches = append(s.branches, Branch{From: hit.Pos, To: f.Pos, Color: f.Color, Tick: s.ticks})

		dist := f.Pos.Len()
		s.worldRadius = math.Max(s.worldRadius, dist*s.cfg.WorldAggregateRatio)
		s.displayRadiusTarget = math.Max(s.displayRadiusTarget, dist*s.cfg.ViewAggregateRatio)
		frozen++
	}
	s.active = kept

	if n := s.index.Rebuilds(); n != rebuilds {
		box := s.index.Extent()
		s.logger.Debugf("index grew to [%.3f, %.3f]x[%.3f, %.3f] (%d rebuilds, %d particles)",
			box.Min.X, box.Max.X, box.Min.Y, box.Max.Y, n, s.index.Len())
	}
	return frozen
}

func (s *Simulation) query(pos geometry.Vector2D) (particle.Frozen, bool) {
	if s.cfg.ExactNeighbors {
		return s.index.QueryExact(pos)
	}
	return s.index.Query(pos)
}

// UpdateCamera eases the display radius towards its target and returns it.
// Call it once per rendered frame.
func (s *Simulation) UpdateCamera() float64 {
	k := s.cfg.ZoomSmoothness
	s.displayRadius = s.displayRadius*k + s.displayRadiusTarget*(1-k)
	return s.displayRadius
}
