package syncbench

import (
	"sync"
	"sync/atomic"
)

// ChanQueue adapts a buffered channel to the Queue contract.
//
// Sending on a closed channel panics, so every Send holds a read lock and
// Close takes the write lock before closing. Close first closes done, which
// releases senders blocked on a full channel with ErrQueueClosed.
type ChanQueue[T any] struct {
	mu       sync.RWMutex
	ch       chan T
	done     chan struct{}
	doneOnce sync.Once
	closed   bool

	highWater atomic.Int64
}

// NewChanQueue creates a channel-backed queue.
func NewChanQueue[T any](capacity int) *ChanQueue[T] {
	if capacity <= 0 {
		panic("capacity must be positive")
	}
	return &ChanQueue[T]{
		ch:   make(chan T, capacity),
		done: make(chan struct{}),
	}
}

func (q *ChanQueue[T]) Send(item T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}
	select {
	case q.ch <- item:
	case <-q.done:
		return ErrQueueClosed
	}

	n := int64(len(q.ch))
	for {
		cur := q.highWater.Load()
		if n <= cur || q.highWater.CompareAndSwap(cur, n) {
			break
		}
	}
	return nil
}

func (q *ChanQueue[T]) Receive() (T, bool) {
	item, ok := <-q.ch
	return item, ok
}

// Close wakes blocked senders, then closes the underlying channel once
// in-flight senders have returned. Close is idempotent.
func (q *ChanQueue[T]) Close() {
	q.doneOnce.Do(func() { close(q.done) })

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}

func (q *ChanQueue[T]) Len() int { return len(q.ch) }

func (q *ChanQueue[T]) Cap() int { return cap(q.ch) }

// HighWater returns the largest buffered length seen right after a Send.
func (q *ChanQueue[T]) HighWater() int {
	return int(q.highWater.Load())
}
