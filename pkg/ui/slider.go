package ui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider is a horizontal value picker. A positive Step snaps the value to
// multiples of Step above Min.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	Step     float64
	X, Y     float64
	W, H     float64

	// OnChange is called after a drag moved the value.
	OnChange func(v float64)
}

// NewSlider creates a new slider instance
func NewSlider(x, y, width float64, label string, min, max, value float64) *Slider {
	s := &Slider{
		Label: label,
		Min:   min,
		Max:   max,
		X:     x,
		Y:     y,
		W:     width,
		H:     12,
	}
	s.Value = s.clamp(value)
	return s
}

// ValueAt maps a cursor x coordinate to a slider value.
func (s *Slider) ValueAt(mx float64) float64 {
	if s.W <= 0 {
		return s.Min
	}
	p := (mx - s.X) / s.W
	return s.clamp(s.Min + p*(s.Max-s.Min))
}

func (s *Slider) clamp(v float64) float64 {
	if s.Step > 0 {
		v = s.Min + math.Round((v-s.Min)/s.Step)*s.Step
	}
	return math.Max(s.Min, math.Min(s.Max, v))
}

// Ratio is the filled fraction of the bar.
func (s *Slider) Ratio() float64 {
	if s.Max == s.Min {
		return 0
	}
	return (s.Value - s.Min) / (s.Max - s.Min)
}

// Update checks for mouse interaction
func (s *Slider) Update() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if !hit(mx, my, s.X, s.Y, s.W, s.H) {
		return
	}
	if v := s.ValueAt(float64(mx)); v != s.Value {
		s.Value = v
		if s.OnChange != nil {
			s.OnChange(v)
		}
	}
}

// Draw renders the slider
func (s *Slider) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*s.Ratio()), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)

	ebitenutil.DebugPrintAt(screen, s.format(), int(s.X+s.W)-60, int(s.Y)-15)
}

func (s *Slider) format() string {
	if s.Step >= 1 {
		return fmt.Sprintf("%8.0f", s.Value)
	}
	return fmt.Sprintf("%8.4g", s.Value)
}
