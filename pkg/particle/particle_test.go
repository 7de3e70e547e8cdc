package particle

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/palette"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/rng"
)

func TestOverlaps(t *testing.T) {
	const r = 0.01
	tests := []struct {
		name string
		a, b geometry.Vector2D
		want bool
	}{
		{"same spot", geometry.Vector2D{}, geometry.Vector2D{}, true},
		{"touching on X", geometry.Vector2D{}, geometry.Vector2D{X: 2 * r}, true},
		{"touching on Y", geometry.Vector2D{Y: 2 * r}, geometry.Vector2D{}, true},
		{"just apart", geometry.Vector2D{}, geometry.Vector2D{X: 2*r + 1e-9}, false},
		{"far", geometry.Vector2D{X: 1}, geometry.Vector2D{X: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b, r); got != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v; want %v", tt.a, tt.b, got, tt.want)
			}
			if got := Overlaps(tt.b, tt.a, r); got != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v; want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestActive_FreezeOntoPlacesAtContactDistance(t *testing.T) {
	const r = 0.01
	src := rng.New(3)
	hit := Frozen{Pos: geometry.Vector2D{X: 0.3, Y: -0.2}, Color: palette.White}

	// Any penetration depth must give the same contact distance.
	for _, offset := range []geometry.Vector2D{
		{X: 0.019}, {X: -0.001, Y: 0.005}, {X: 0.014, Y: 0.014}, {Y: -0.02},
	} {
		a := Active{Pos: hit.Pos.Add(offset)}
		f := a.FreezeOnto(hit, r, 0.1, src)
		if d := f.Pos.DistanceTo(hit.Pos); math.Abs(d-2*r) > 1e-12 {
			t.Errorf("offset %v: contact distance = %v; want %v", offset, d, 2*r)
		}
		want := offset.Normalize()
		got := f.Pos.Sub(hit.Pos).Normalize()
		if !got.Eq(want) {
			t.Errorf("offset %v: contact direction = %v; want %v", offset, got, want)
		}
	}
}

func TestActive_FreezeOntoCoincidentCenters(t *testing.T) {
	const r = 0.05
	hit := Frozen{Pos: geometry.Vector2D{X: 1, Y: 1}, Color: palette.White}
	f := Active{Pos: hit.Pos}.FreezeOnto(hit, r, 0, rng.New(1))
	if d := f.Pos.DistanceTo(hit.Pos); math.Abs(d-2*r) > 1e-12 {
		t.Errorf("contact distance = %v; want %v", d, 2*r)
	}
	if f.Color != hit.Color {
		t.Errorf("zero mutate changed color: %v; want %v", f.Color, hit.Color)
	}
}

func TestActive_Advance(t *testing.T) {
	a := Active{Pos: geometry.Vector2D{X: 1}, Vel: geometry.Vector2D{X: -1, Y: 2}}
	a.Advance(0.5)
	if !a.Pos.Eq(geometry.Vector2D{X: 0.5, Y: 1}) {
		t.Errorf("Advance(0.5) = %v; want (0.5, 1)", a.Pos)
	}
}
