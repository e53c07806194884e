package syncx

import "sync"

// Barrier blocks a fixed number of goroutines until all of them arrive.
// It is reusable: each release starts a new generation, so a fast goroutine
// re-entering Wait cannot slip through the previous generation's release.
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	parties    int
	arrived    int
	generation uint64
}

// NewBarrier creates a barrier for parties goroutines.
func NewBarrier(parties int) *Barrier {
	if parties <= 0 {
		panic("barrier parties must be > 0")
	}
	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until parties goroutines have called it. Exactly one caller
// per generation, the last to arrive, gets leader == true.
func (b *Barrier) Wait() (leader bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.generation
	b.arrived++
	if b.arrived == b.parties {
		b.arrived = 0
		b.generation++
		b.cond.Broadcast()
		return true
	}

	for gen == b.generation {
		b.cond.Wait()
	}
	return false
}

// Parties returns the number of goroutines the barrier waits for.
func (b *Barrier) Parties() int {
	return b.parties
}
