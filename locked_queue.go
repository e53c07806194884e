package syncbench

import (
	"sync"

	"github.com/eapache/queue"
)

// LockedQueue is a bounded FIFO guarded by one mutex and two condition
// variables. Items live in a growable ring from eapache/queue; the bound is
// enforced here, not by the ring.
type LockedQueue[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	// ring holds pending items; it never holds more than capacity
	ring     *queue.Queue
	capacity int
	closed   bool

	highWater int
}

// NewLockedQueue creates a locked queue with the given capacity.
func NewLockedQueue[T any](capacity int) *LockedQueue[T] {
	if capacity <= 0 {
		panic("capacity must be positive")
	}

	q := &LockedQueue[T]{
		ring:     queue.New(),
		capacity: capacity,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Send appends item, waiting while the queue is full.
// Returns ErrQueueClosed if the queue is closed before space frees up.
func (q *LockedQueue[T]) Send(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.ring.Length() >= q.capacity && !q.closed {
		q.notFull.Wait()
	}
	if q.closed {
		return ErrQueueClosed
	}

	q.ring.Add(item)
	if n := q.ring.Length(); n > q.highWater {
		q.highWater = n
	}
	q.notEmpty.Signal()
	return nil
}

// Receive removes the oldest item, waiting while the queue is empty and open.
func (q *LockedQueue[T]) Receive() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.ring.Length() == 0 {
		if q.closed {
			var zero T
			return zero, false
		}
		q.notEmpty.Wait()
	}

	item := q.ring.Remove().(T)
	q.notFull.Signal()
	return item, true
}

// Close wakes every waiter. Pending items remain receivable.
func (q *LockedQueue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

// Len returns the current number of queued items.
func (q *LockedQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ring.Length()
}

// Cap returns the queue bound.
func (q *LockedQueue[T]) Cap() int {
	return q.capacity
}

// HighWater returns the largest length the queue has held.
func (q *LockedQueue[T]) HighWater() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.highWater
}
