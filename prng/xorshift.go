// Package prng provides a small deterministic generator for simulations
// that need reproducible streams per goroutine.
package prng

import "math"

// DefaultSeed is the base seed for per-worker streams. Worker i uses
// DefaultSeed + i.
const DefaultSeed uint64 = 0x9E3779B97F4A7C15

// zeroReplacement is used for a zero seed, which would make xorshift emit
// zeros forever.
const zeroReplacement uint64 = 0xA511E9B7C3D21234

// XorShift64 is Marsaglia's 64-bit xorshift generator with shifts 13, 7, 17.
// It is not safe for concurrent use; give each goroutine its own.
type XorShift64 struct {
	state uint64
}

// New returns a generator seeded with seed.
func New(seed uint64) *XorShift64 {
	if seed == 0 {
		seed = zeroReplacement
	}
	return &XorShift64{state: seed}
}

// ForWorker returns the generator for worker id, seeded DefaultSeed + id
// with wraparound.
func ForWorker(id uint64) *XorShift64 {
	return New(DefaultSeed + id)
}

// Uint64 advances the state and returns it.
func (g *XorShift64) Uint64() uint64 {
	x := g.state
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.state = x
	return x
}

// Float64 returns a value in [0, 1], computed as Uint64 / MaxUint64.
func (g *XorShift64) Float64() float64 {
	return float64(g.Uint64()) / float64(math.MaxUint64)
}
