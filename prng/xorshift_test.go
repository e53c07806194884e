package prng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXorShift64_FirstValue(t *testing.T) {
	// One step from seed 1: x ^= x<<13, x ^= x>>7, x ^= x<<17.
	x := uint64(1)
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17

	g := New(1)
	assert.Equal(t, x, g.Uint64())
}

func TestXorShift64_ZeroSeedIsReplaced(t *testing.T) {
	a := New(0)
	b := New(zeroReplacement)
	for i := 0; i < 10; i++ {
		v := a.Uint64()
		require.NotZero(t, v)
		assert.Equal(t, b.Uint64(), v)
	}
}

func TestXorShift64_Deterministic(t *testing.T) {
	a, b := ForWorker(3), ForWorker(3)
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Uint64(), b.Uint64())
	}

	c, d := ForWorker(0), ForWorker(1)
	assert.NotEqual(t, c.Uint64(), d.Uint64())
}

func TestXorShift64_Float64Range(t *testing.T) {
	g := ForWorker(0)
	var sum float64
	const n = 100000
	for i := 0; i < n; i++ {
		f := g.Float64()
		require.GreaterOrEqual(t, f, 0.0)
		require.LessOrEqual(t, f, 1.0)
		sum += f
	}
	assert.InDelta(t, 0.5, sum/n, 0.01)
}

func TestForWorker_WrapsAround(t *testing.T) {
	// DefaultSeed + id must not panic or special-case overflow.
	g := ForWorker(^uint64(0))
	assert.Equal(t, DefaultSeed-1, g.state)
}
