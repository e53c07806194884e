package pipeline

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// JobID tags a job with its producer, its index within that producer, and
// its index in the whole run.
type JobID struct {
	Producer int
	Local    int
	Global   int
}

func (id JobID) String() string {
	return fmt.Sprintf("p%d/%d#%d", id.Producer, id.Local, id.Global)
}

// Source builds the job identified by id. It must be safe for concurrent
// use; producers call it from their own goroutines.
type Source[J any] func(id JobID) J

// Share returns how many of n items producer p enqueues when n is split
// across producers: n/producers, plus one for the first n%producers.
func Share(n, producers, p int) int {
	share := n / producers
	if p < n%producers {
		share++
	}
	return share
}

// Offset returns the global index of producer p's first item.
func Offset(n, producers, p int) int {
	base, rem := n/producers, n%producers
	return p*base + min(p, rem)
}

// Produce runs producers goroutines that together call send for exactly n
// jobs, then waits for all of them. Producer p emits Share(n, producers, p)
// jobs in local order. The first send error stops that producer and is
// returned.
func Produce[J any](n, producers int, source Source[J], send func(J) error) error {
	var g errgroup.Group
	for p := 0; p < producers; p++ {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("producer %d panicked: %v", p, r)
				}
			}()

			share, offset := Share(n, producers, p), Offset(n, producers, p)
			for local := 0; local < share; local++ {
				id := JobID{Producer: p, Local: local, Global: offset + local}
				if err := send(source(id)); err != nil {
					return fmt.Errorf("producer %d: send %s: %w", p, id, err)
				}
			}
			return nil
		})
	}
	return g.Wait()
}
