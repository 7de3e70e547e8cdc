package bins

import (
	"testing"

	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/rng"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestIndex_QueryIsSymmetricAtContactDistance(t *testing.T) {
	cfg := testConfig()
	d := 2 * cfg.ParticleRadius

	tests := []struct {
		name string
		a, b geometry.Vector2D
		want bool
	}{
		{"touching on X", geometry.Vector2D{X: 0}, geometry.Vector2D{X: d}, true},
		{"touching on Y", geometry.Vector2D{Y: 0}, geometry.Vector2D{Y: -d}, true},
		{"apart on X", geometry.Vector2D{X: 0}, geometry.Vector2D{X: d + 1e-9}, false},
		{"apart on Y", geometry.Vector2D{Y: 0}, geometry.Vector2D{Y: -d - 1e-9}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, pair := range [][2]geometry.Vector2D{{tt.a, tt.b}, {tt.b, tt.a}} {
				b := New(cfg)
				b.Insert(frozenAt(pair[0].X, pair[0].Y))
				_, got := b.Query(pair[1])
				if got != tt.want {
					t.Errorf("frozen at %v, Query(%v) found = %v; want %v", pair[0], pair[1], got, tt.want)
				}
			}
		})
	}
}

func TestIndex_QueryReturnsTheOverlappingParticle(t *testing.T) {
	b := New(testConfig())
	b.Insert(frozenAt(0, 0))
	b.Insert(frozenAt(0.2, 0.2))
	b.Insert(frozenAt(-0.2, 0.1))

	got, ok := b.Query(geometry.Vector2D{X: 0.205, Y: 0.19})
	if !ok {
		t.Fatal("Query found nothing; want the particle at (0.2, 0.2)")
	}
	if !got.Pos.Eq(geometry.Vector2D{X: 0.2, Y: 0.2}) {
		t.Errorf("Query returned %v; want (0.2, 0.2)", got.Pos)
	}

	if _, ok := b.Query(geometry.Vector2D{X: 0.1, Y: -0.1}); ok {
		t.Error("Query found a particle in empty space")
	}
	if _, ok := b.Query(geometry.Vector2D{X: 50, Y: 50}); ok {
		t.Error("Query outside the grid should find nothing")
	}
}

// The probe search only looks one radius away from the query point, so an
// overlap just across a cell border can be missed. QueryExact finds it.
func TestIndex_QueryProbeMissVersusExact(t *testing.T) {
	cfg := Config{CellCount: 10, MarginMin: 0.05, MarginMax: 0.2, ParticleRadius: 0.01}
	b := New(cfg)
	b.box = r2.Box{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: 1, Y: 1}}
	b.rebucket()

	// cell border at x = 0.1
	frozen := frozenAt(0.103, 0.55)
	b.Insert(frozen)
	query := geometry.Vector2D{X: 0.085, Y: 0.55} // 0.018 away

	if _, ok := b.Query(query); ok {
		t.Error("Query found the cross-border particle; the probes should not reach it")
	}
	got, ok := b.QueryExact(query)
	if !ok {
		t.Fatal("QueryExact missed an overlapping particle")
	}
	if got.Pos != frozen.Pos {
		t.Errorf("QueryExact returned %v; want %v", got.Pos, frozen.Pos)
	}

	// Closer to the border the probes do cross it.
	if _, ok := b.Query(geometry.Vector2D{X: 0.095, Y: 0.55}); !ok {
		t.Error("Query missed a particle reachable through a probe cell")
	}
}

func TestIndex_QueryAgreesWithBruteForceAwayFromBorders(t *testing.T) {
	b := New(testConfig())
	src := rng.New(99)
	for i := 0; i < 2000; i++ {
		b.Insert(frozenAt(rng.Symmetric(src, 1), rng.Symmetric(src, 1)))
	}
	r := testConfig().ParticleRadius

	for i := 0; i < 2000; i++ {
		q := geometry.Vector2D{X: rng.Symmetric(src, 1), Y: rng.Symmetric(src, 1)}
		brute := false
		for p := range b.All() {
			if p.Pos.DistanceSquaredTo(q) <= 4*r*r {
				brute = true
				break
			}
		}
		_, exact := b.QueryExact(q)
		if exact != brute {
			t.Fatalf("QueryExact(%v) = %v; brute force says %v", q, exact, brute)
		}
		if _, probe := b.Query(q); probe && !brute {
			t.Fatalf("Query(%v) reported a false overlap", q)
		}
	}
}

func BenchmarkIndex_Query(b *testing.B) {
	idx := New(testConfig())
	src := rng.New(1)
	for i := 0; i < 20000; i++ {
		idx.Insert(frozenAt(rng.Symmetric(src, 2), rng.Symmetric(src, 2)))
	}
	queries := make([]geometry.Vector2D, 1024)
	for i := range queries {
		queries[i] = geometry.Vector2D{X: rng.Symmetric(src, 2), Y: rng.Symmetric(src, 2)}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.Query(queries[i%len(queries)])
	}
}
