// Package rng provides the single seedable uniform random source shared by
// spawning, boundary bounces and color jitter.
package rng

import (
	"math"

	"golang.org/x/exp/rand"
)

// Source yields uniform samples in [0, 1).
// *rand.Rand satisfies it, and tests can plug in a scripted sequence.
type Source interface {
	Float64() float64
}

// New returns a deterministic source for the given seed.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Range samples uniformly in [lo, hi).
func Range(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Symmetric samples uniformly in [-amount, amount).
func Symmetric(src Source, amount float64) float64 {
	return Range(src, -amount, amount)
}

// Angle samples a direction uniformly in [0, 2*Pi).
func Angle(src Source) float64 {
	return src.Float64() * 2 * math.Pi
}
