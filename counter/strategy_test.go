package counter

import (
	"testing"
	"time"

	"github.com/tahsin716/syncbench/syncx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategies_ExactTotals(t *testing.T) {
	tests := []struct {
		strategy Strategy
		name     string
	}{
		{Atomic{}, "atomic"},
		{PerUpdate(), "lock per update"},
		{Batched(1000), "lock per 1000"},
		{Batched(7), "lock per 7"},
		{Once(), "lock once"},
		{Sequential{}, "sequential"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.strategy.Name())
			for _, goroutines := range []int{1, 3, 8} {
				got, err := tt.strategy.Run(goroutines, 20_001)
				require.NoError(t, err)
				assert.Equal(t, uint64(goroutines*20_001), got)
			}
		})
	}
}

func TestUnsynchronized_NeverOvercounts(t *testing.T) {
	const goroutines, iterations = 4, 50_000
	got, err := Unsynchronized{}.Run(goroutines, iterations)
	require.NoError(t, err)
	assert.LessOrEqual(t, got, uint64(goroutines*iterations))
	assert.Greater(t, got, uint64(0))

	// A single goroutine cannot race with itself.
	got, err = Unsynchronized{}.Run(1, iterations)
	require.NoError(t, err)
	assert.Equal(t, uint64(iterations), got)
}

func TestBatched_ClampsToOne(t *testing.T) {
	assert.Equal(t, 1, Batched(0).Batch)
	assert.Equal(t, 1, Batched(-5).Batch)
}

func TestLocked_PinnedThreads(t *testing.T) {
	s := PerUpdate()
	s.Pin = true
	got, err := s.Run(2, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), got)
}

func TestLocked_PoisonedCounterStopsEveryGoroutine(t *testing.T) {
	counter := syncx.NewMutex[uint64](0)
	assert.Panics(t, func() {
		_ = counter.Do(func(*uint64) { panic("holder failed") })
	})

	for _, s := range []Locked{PerUpdate(), Batched(100), Once()} {
		t.Run(s.Name(), func(t *testing.T) {
			start := time.Now()
			got, err := s.run(counter, 8, 1_000_000)
			require.Error(t, err)
			assert.ErrorIs(t, err, syncx.ErrPriorHolderFailed)
			assert.Zero(t, got)
			assert.Less(t, time.Since(start), 5*time.Second)
		})
	}
}
