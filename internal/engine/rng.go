package engine

import "math/rand/v2"

// RNG is the single pseudo-random source consumed by Simulate. Using one
// seedable generator, drawn from in a documented, fixed order, is what
// makes two runs of an identical Config byte-identical (spec.md §5, §8
// "Determinism").
//
// Draw order within a tick: arrivals before transitions, both in ascending
// node id order (spec.md §9 "Randomness").
type RNG struct {
	r *rand.Rand
}

// NewRNG builds a deterministic RNG from a 64-bit seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))}
}

// Bernoulli reports a trial of probability p (consumed for packet arrival
// in ModeRandom).
func (g *RNG) Bernoulli(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return g.r.Float64() < p
}

// UniformBackoff draws U{0, 2^be - 1} and returns it. Consumed once per
// Sensing->Backoff/TxPreamble transition.
func (g *RNG) UniformBackoff(be int) int {
	span := 1 << be
	if span <= 1 {
		return 0
	}
	return g.r.IntN(span)
}
