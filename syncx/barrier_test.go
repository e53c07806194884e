package syncx

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBarrier_NoOneLeavesEarly(t *testing.T) {
	const parties = 8
	b := NewBarrier(parties)

	var arrived atomic.Int32
	var violations atomic.Int32
	var leaders atomic.Int32

	var wg sync.WaitGroup
	wg.Add(parties)
	for i := 0; i < parties; i++ {
		go func() {
			defer wg.Done()
			arrived.Add(1)
			if b.Wait() {
				leaders.Add(1)
			}
			if arrived.Load() < parties {
				violations.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, violations.Load())
	assert.Equal(t, int32(1), leaders.Load())
}

func TestBarrier_Reusable(t *testing.T) {
	const (
		parties = 4
		rounds  = 100
	)
	b := NewBarrier(parties)

	var phase [rounds]atomic.Int32
	var leaders atomic.Int32
	var bad atomic.Bool

	var wg sync.WaitGroup
	wg.Add(parties)
	for i := 0; i < parties; i++ {
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				phase[r].Add(1)
				if b.Wait() {
					leaders.Add(1)
				}
				if phase[r].Load() != parties {
					bad.Store(true)
				}
			}
		}()
	}
	wg.Wait()

	assert.False(t, bad.Load(), "a goroutine crossed a generation early")
	assert.Equal(t, int32(rounds), leaders.Load())
}

func TestBarrier_SingleParty(t *testing.T) {
	b := NewBarrier(1)
	assert.True(t, b.Wait())
	assert.True(t, b.Wait())
	assert.Equal(t, 1, b.Parties())
}

func TestNewBarrier_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { NewBarrier(0) })
}
