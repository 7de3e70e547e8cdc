package dla

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/palette"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/particle"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/rng"
)

const floatTolerance = 1e-9

// smallWorld keeps the walk short so aggregation starts within a few
// hundred ticks.
func smallWorld() Config {
	cfg := DefaultConfig()
	cfg.ActiveTarget = 60
	cfg.InitialWorldRadius = 0.25
	return cfg
}

func TestSimulation_NewSeedsOrigin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SeedColor = palette.Color{R: 0.2, G: 0.4, B: 0.6, A: 1}
	s := New(cfg, rng.New(1))

	if s.Index().Len() != 1 {
		t.Fatalf("Index().Len() = %d; want 1", s.Index().Len())
	}
	for p := range s.Index().All() {
		if !p.Pos.IsZero() || p.Color != cfg.SeedColor {
			t.Errorf("seed = %v %v; want origin %v", p.Pos, p.Color, cfg.SeedColor)
		}
	}
	if s.WorldRadius() != cfg.InitialWorldRadius {
		t.Errorf("WorldRadius() = %v; want %v", s.WorldRadius(), cfg.InitialWorldRadius)
	}
	if len(s.Active()) != 0 {
		t.Errorf("len(Active()) = %d; want 0", len(s.Active()))
	}
}

func TestSimulation_Spawn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ActiveTarget = 50
	s := New(cfg, rng.New(8))
	s.Spawn()

	if got := len(s.Active()); got != cfg.ActiveTarget {
		t.Fatalf("len(Active()) = %d; want %d", got, cfg.ActiveTarget)
	}
	for i, a := range s.Active() {
		if d := a.Pos.Len(); math.Abs(d-s.WorldRadius()) > floatTolerance {
			t.Errorf("particle %d spawned at distance %v; want %v", i, d, s.WorldRadius())
		}
		if l := a.Vel.Len(); math.Abs(l-1) > floatTolerance {
			t.Errorf("particle %d speed = %v; want 1", i, l)
		}
		inward := a.Pos.Neg().Normalize()
		angle := math.Acos(math.Max(-1, math.Min(1, inward.Dot(a.Vel))))
		if angle > cfg.SpawnSpread+floatTolerance {
			t.Errorf("particle %d heads %v rad off inward; want at most %v", i, angle, cfg.SpawnSpread)
		}
	}

	// already at target: no-op
	s.Spawn()
	if got := len(s.Active()); got != cfg.ActiveTarget {
		t.Errorf("second Spawn() grew the set to %d", got)
	}
}

func TestSimulation_BouncePreservesSpeed(t *testing.T) {
	cfg := DefaultConfig()
	src := rng.New(21)

	for i := 0; i < 200; i++ {
		s := New(cfg, src)
		at := rng.Angle(src)
		speed := 0.5 + src.Float64()
		// outward, far enough from tangent that the jitter cannot undo the bounce
		heading := at + rng.Symmetric(src, 1.0)
		s.active = append(s.active, particle.Active{
			Pos: geometry.NewVectorPolar(s.WorldRadius(), at),
			Vel: geometry.NewVectorPolar(speed, heading),
		})

		s.KinematicUpdate()

		a := s.Active()[0]
		if d := a.Pos.Len(); math.Abs(d-s.WorldRadius()) > floatTolerance {
			t.Fatalf("bounced particle at distance %v; want clamped to %v", d, s.WorldRadius())
		}
		if got := a.Vel.Len(); math.Abs(got-speed) > floatTolerance {
			t.Fatalf("speed after bounce = %v; want %v", got, speed)
		}
		if a.Vel.Dot(a.Pos) >= 0 {
			t.Fatalf("velocity %v still points outwards at %v", a.Vel, a.Pos)
		}
	}
}

func TestSimulation_KinematicUpdateInside(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StepSize = 0.05
	s := New(cfg, rng.New(1))
	s.active = append(s.active, particle.Active{
		Pos: geometry.Vector2D{X: 0.1},
		Vel: geometry.Vector2D{Y: 1},
	})

	s.KinematicUpdate()

	if got := s.Active()[0].Pos; !got.Eq(geometry.Vector2D{X: 0.1, Y: 0.05}) {
		t.Errorf("Pos = %v; want (0.1, 0.05)", got)
	}
}

// One inward particle must stick to the seed at contact distance with a
// jittered seed color.
func TestSimulation_SingleParticleScenario(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ActiveTarget = 1
	cfg.SpawnSpread = 0
	c0 := palette.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}
	cfg.SeedColor = c0
	s := New(cfg, rng.New(77))
	s.Spawn()

	for i := 0; i < 1000 && s.Index().Len() == 1; i++ {
		s.KinematicUpdate()
		s.Collide()
	}

	if s.Index().Len() != 2 {
		t.Fatalf("Index().Len() = %d; want 2 (particle never collided)", s.Index().Len())
	}
	if len(s.Active()) != 0 {
		t.Errorf("len(Active()) = %d; want 0", len(s.Active()))
	}

	var frozen particle.Frozen
	for p := range s.Index().All() {
		if !p.Pos.IsZero() {
			frozen = p
		}
	}
	r := cfg.ParticleRadius
	if d := frozen.Pos.Len(); math.Abs(d-2*r) > floatTolerance {
		t.Errorf("frozen at distance %v; want %v", d, 2*r)
	}
	for _, ch := range [][2]float64{{frozen.Color.R, c0.R}, {frozen.Color.G, c0.G}, {frozen.Color.B, c0.B}} {
		if math.Abs(ch[0]-ch[1]) > cfg.MutateAmount {
			t.Errorf("color %v drifted more than %v from %v", frozen.Color, cfg.MutateAmount, c0)
		}
	}
	if s.WorldRadius() < 2*r*cfg.WorldAggregateRatio {
		t.Errorf("WorldRadius() = %v; want >= %v", s.WorldRadius(), 2*r*cfg.WorldAggregateRatio)
	}

	branches := s.Branches()
	if len(branches) != 1 || !branches[0].From.IsZero() || branches[0].To != frozen.Pos {
		t.Errorf("Branches() = %v; want one branch from origin to %v", branches, frozen.Pos)
	}
}

func TestSimulation_GrowthAndContactInvariants(t *testing.T) {
	for _, exact := range []bool{false, true} {
		cfg := smallWorld()
		cfg.ExactNeighbors = exact
		s := New(cfg, rng.New(2025))

		prevWorld, prevTarget := s.WorldRadius(), s.DisplayRadiusTarget()
		for i := 0; i < 4000; i++ {
			s.Tick()
			if s.WorldRadius() < prevWorld {
				t.Fatalf("exact=%v tick %d: world radius shrank %v -> %v", exact, i, prevWorld, s.WorldRadius())
			}
			if s.DisplayRadiusTarget() < prevTarget {
				t.Fatalf("exact=%v tick %d: display target shrank %v -> %v", exact, i, prevTarget, s.DisplayRadiusTarget())
			}
			prevWorld, prevTarget = s.WorldRadius(), s.DisplayRadiusTarget()
		}

		if len(s.Branches()) == 0 {
			t.Fatalf("exact=%v: nothing aggregated in 4000 ticks", exact)
		}
		if s.Index().Len() != len(s.Branches())+1 {
			t.Errorf("exact=%v: %d frozen for %d branches", exact, s.Index().Len(), len(s.Branches()))
		}
		for _, b := range s.Branches() {
			if d := b.From.DistanceTo(b.To); math.Abs(d-2*cfg.ParticleRadius) > floatTolerance {
				t.Fatalf("exact=%v: branch length %v; want %v", exact, d, 2*cfg.ParticleRadius)
			}
			if b.To.Len()*cfg.WorldAggregateRatio > s.WorldRadius()+floatTolerance {
				t.Fatalf("exact=%v: frozen particle at %v outside the grown world %v", exact, b.To, s.WorldRadius())
			}
		}
		if s.Ticks() != 4000 {
			t.Errorf("Ticks() = %d; want 4000", s.Ticks())
		}
	}
}

func TestSimulation_IsDeterministicForASeed(t *testing.T) {
	run := func() (int, float64) {
		s := New(smallWorld(), rng.New(314))
		for i := 0; i < 1500; i++ {
			s.Tick()
		}
		return s.Index().Len(), s.WorldRadius()
	}
	n1, r1 := run()
	n2, r2 := run()
	if n1 != n2 || r1 != r2 {
		t.Errorf("same seed gave (%d, %v) and (%d, %v)", n1, r1, n2, r2)
	}
}

func TestSimulation_UpdateCamera(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ZoomSmoothness = 0.5
	s := New(cfg, rng.New(1))
	s.displayRadiusTarget = 1.1

	want := []float64{0.6, 0.85, 0.975}
	for i, w := range want {
		if got := s.UpdateCamera(); math.Abs(got-w) > floatTolerance {
			t.Errorf("UpdateCamera() #%d = %v; want %v", i, got, w)
		}
	}
}

func TestSimulation_Restart(t *testing.T) {
	s := New(smallWorld(), rng.New(4))
	for i := 0; i < 2000; i++ {
		s.Tick()
	}
	s.Restart()

	if s.Index().Len() != 1 || len(s.Active()) != 0 || len(s.Branches()) != 0 || s.Ticks() != 0 {
		t.Errorf("after Restart: frozen=%d active=%d branches=%d ticks=%d; want 1 0 0 0",
			s.Index().Len(), len(s.Active()), len(s.Branches()), s.Ticks())
	}
	if s.WorldRadius() != smallWorld().InitialWorldRadius {
		t.Errorf("WorldRadius() = %v; want %v", s.WorldRadius(), smallWorld().InitialWorldRadius)
	}
}

func TestSimulation_SetConfig(t *testing.T) {
	s := New(smallWorld(), rng.New(4))
	for i := 0; i < 500; i++ {
		s.Tick()
	}
	n := s.Index().Len()

	cfg := smallWorld()
	cfg.CellCount = 12
	cfg.ActiveTarget = 5
	s.SetConfig(cfg)

	if s.Index().CellCount() != 12 || s.Index().Len() != n {
		t.Errorf("index after SetConfig: cells=%d len=%d; want 12 %d", s.Index().CellCount(), s.Index().Len(), n)
	}
	if s.Config().ActiveTarget != 5 {
		t.Errorf("Config().ActiveTarget = %d; want 5", s.Config().ActiveTarget)
	}
}

func BenchmarkSimulation_Tick(b *testing.B) {
	s := New(smallWorld(), rng.New(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Tick()
	}
}
