// Package counter implements the shared-counter increment strategies the
// benchmarks compare, from deliberately racy to fully sequential.
package counter

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/tahsin716/syncbench/group"
	"github.com/tahsin716/syncbench/syncx"
)

// Strategy increments a shared counter from several goroutines.
// Run spawns goroutines, each performing iterations increments, and returns
// the final counter value. Every strategy except Unsynchronized must return
// goroutines*iterations.
type Strategy interface {
	Name() string
	Run(goroutines, iterations int) (uint64, error)
}

// yieldEvery is how often a hot loop calls runtime.Gosched so goroutines
// interleave even on a single P.
const yieldEvery = 1024

// Unsynchronized reads and writes the counter with separate atomic loads and
// stores. Concurrent increments between the load and the store are lost; the
// loss is the point of this strategy.
type Unsynchronized struct {
	Pin bool
}

func (Unsynchronized) Name() string { return "unsynchronized" }

func (s Unsynchronized) Run(goroutines, iterations int) (uint64, error) {
	var counter atomic.Uint64
	err := group.Run(goroutines, func(int) {
		for i := 0; i < iterations; i++ {
			current := counter.Load()
			counter.Store(current + 1)
			if i%yieldEvery == 0 {
				runtime.Gosched()
			}
		}
	}, group.WithPinnedThreads(s.Pin))
	return counter.Load(), err
}

// Atomic increments with a single fetch-and-add.
type Atomic struct {
	Pin bool
}

func (Atomic) Name() string { return "atomic" }

func (s Atomic) Run(goroutines, iterations int) (uint64, error) {
	var counter atomic.Uint64
	err := group.Run(goroutines, func(int) {
		for i := 0; i < iterations; i++ {
			counter.Add(1)
			if i%yieldEvery == 0 {
				runtime.Gosched()
			}
		}
	}, group.WithPinnedThreads(s.Pin))
	return counter.Load(), err
}

// Locked takes a poisoning mutex every Batch increments, accumulating
// locally in between. Batch 1 locks per update; Batch 0 locks once per
// goroutine.
type Locked struct {
	Batch int
	Pin   bool
}

// PerUpdate locks around every single increment.
func PerUpdate() Locked { return Locked{Batch: 1} }

// Batched locks once per k local increments.
func Batched(k int) Locked {
	if k < 1 {
		k = 1
	}
	return Locked{Batch: k}
}

// Once locks a single time per goroutine, after all local increments.
func Once() Locked { return Locked{Batch: 0} }

func (l Locked) Name() string {
	switch l.Batch {
	case 0:
		return "lock once"
	case 1:
		return "lock per update"
	default:
		return fmt.Sprintf("lock per %d", l.Batch)
	}
}

// yieldInterval matches the loop's lock frequency: coarser locking leaves
// more room between yields.
func (l Locked) yieldInterval() int {
	switch l.Batch {
	case 0:
		return 8 * yieldEvery
	case 1:
		return yieldEvery
	default:
		return 4 * yieldEvery
	}
}

func (l Locked) Run(goroutines, iterations int) (uint64, error) {
	return l.run(syncx.NewMutex[uint64](0), goroutines, iterations)
}

// run increments counter and stops every goroutine at its next yield point
// once one of them sees the lock poisoned.
func (l Locked) run(counter *syncx.Mutex[uint64], goroutines, iterations int) (uint64, error) {
	add := func(n uint64) error {
		return counter.Do(func(v *uint64) { *v += n })
	}
	yield := l.yieldInterval()

	g := group.New(
		group.WithErrorMode(group.FailFast),
		group.WithPinnedThreads(l.Pin),
	)
	for i := 0; i < goroutines; i++ {
		g.Go(func(ctx context.Context, _ int) error {
			var local uint64
			for i := 0; i < iterations; i++ {
				local++
				if l.Batch > 0 && local == uint64(l.Batch) {
					if err := add(local); err != nil {
						return err
					}
					local = 0
				}
				if i%yield == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
					runtime.Gosched()
				}
			}
			if local > 0 {
				return add(local)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var total uint64
	if err := counter.Do(func(v *uint64) { total = *v }); err != nil {
		return 0, err
	}
	return total, nil
}

// Sequential performs all increments on the calling goroutine.
type Sequential struct{}

func (Sequential) Name() string { return "sequential" }

func (Sequential) Run(goroutines, iterations int) (uint64, error) {
	var counter uint64
	for g := 0; g < goroutines; g++ {
		for i := 0; i < iterations; i++ {
			counter++
		}
	}
	return counter, nil
}
