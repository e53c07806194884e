package syncbench

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/cpu"
)

const (
	// spinAttempts is the number of backoff rounds before a blocked caller parks.
	spinAttempts = 16

	// maxParkTime bounds a single park so a missed signal only costs latency.
	maxParkTime = 10 * time.Millisecond
)

// cell is one ring slot. seq tells producers and consumers whose turn it is:
// seq == pos means free for the producer at pos, seq == pos+1 means filled
// for the consumer at pos.
type cell[T any] struct {
	seq  atomic.Uint64
	item T
}

// LockFreeQueue is a bounded MPMC ring with per-cell sequence numbers.
// Both ends are claimed with CAS, so neither producers nor consumers take a
// lock on the fast path. Blocked callers back off, then park on a condition
// variable until the other side makes progress.
type LockFreeQueue[T any] struct {
	_ cpu.CacheLinePad

	// head is the next position to dequeue, advanced by consumers via CAS
	head atomic.Uint64

	_ cpu.CacheLinePad

	// tail is the next position to enqueue, advanced by producers via CAS
	tail atomic.Uint64

	_ cpu.CacheLinePad

	cells []cell[T]
	mask  uint64

	closed   atomic.Bool
	inflight atomic.Int64 // senders between the closed check and their return

	highWater atomic.Int64

	// Parking
	parkMu       sync.Mutex
	notEmpty     *sync.Cond
	notFull      *sync.Cond
	emptyWaiters atomic.Int32
	fullWaiters  atomic.Int32
}

// NewLockFreeQueue creates a lock-free queue.
// Capacity MUST be a power of 2 for the bitwise modulo to work, and at least
// 2: with a single cell a published sequence equals the next tail position,
// so a full cell would look free.
func NewLockFreeQueue[T any](capacity int) *LockFreeQueue[T] {
	if !validLockFreeCapacity(capacity) {
		panic("capacity must be a power of two and >= 2")
	}

	q := &LockFreeQueue[T]{
		cells: make([]cell[T], capacity),
		mask:  uint64(capacity - 1),
	}
	for i := range q.cells {
		q.cells[i].seq.Store(uint64(i))
	}
	q.notEmpty = sync.NewCond(&q.parkMu)
	q.notFull = sync.NewCond(&q.parkMu)
	return q
}

// tryPush claims the tail slot and publishes item.
// Returns false if the ring is full.
func (q *LockFreeQueue[T]) tryPush(item T) bool {
	pos := q.tail.Load()
	for attempt := 0; ; attempt++ {
		c := &q.cells[pos&q.mask]
		seq := c.seq.Load()

		switch dif := int64(seq) - int64(pos); {
		case dif == 0:
			if q.tail.CompareAndSwap(pos, pos+1) {
				c.item = item
				// Release: the consumer that observes pos+1 sees item.
				c.seq.Store(pos + 1)
				return true
			}
			backoff(attempt)
		case dif < 0:
			return false
		}
		pos = q.tail.Load()
	}
}

// tryPop claims the head slot and takes its item.
// Returns false if the ring is empty or the head slot is still being written.
func (q *LockFreeQueue[T]) tryPop() (T, bool) {
	var zero T
	pos := q.head.Load()
	for attempt := 0; ; attempt++ {
		c := &q.cells[pos&q.mask]
		seq := c.seq.Load()

		switch dif := int64(seq) - int64(pos+1); {
		case dif == 0:
			if q.head.CompareAndSwap(pos, pos+1) {
				item := c.item
				c.item = zero
				c.seq.Store(pos + q.mask + 1)
				return item, true
			}
			backoff(attempt)
		case dif < 0:
			return zero, false
		}
		pos = q.head.Load()
	}
}

// backoff yields the processor a growing number of times after a lost CAS.
func backoff(attempt int) {
	switch {
	case attempt < 4:
		// Phase 1: immediate retry, best for low contention
		runtime.Gosched()
	case attempt < 8:
		// Phase 2: light backoff
		for i := 0; i < 1<<(attempt-4); i++ {
			runtime.Gosched()
		}
	default:
		// Phase 3: heavy backoff
		for i := 0; i < 16; i++ {
			runtime.Gosched()
		}
	}
}

// Send enqueues item, blocking while the ring is full.
func (q *LockFreeQueue[T]) Send(item T) error {
	q.inflight.Add(1)
	defer func() {
		q.inflight.Add(-1)
		// A receiver may be waiting for the last in-flight sender after Close.
		q.wake(q.notEmpty, &q.emptyWaiters)
	}()

	for attempt := 0; ; attempt++ {
		if q.closed.Load() {
			return ErrQueueClosed
		}
		if q.tryPush(item) {
			q.recordLen()
			return nil
		}

		if attempt < spinAttempts {
			backoff(attempt)
			continue
		}
		q.park(q.notFull, &q.fullWaiters, func() bool {
			return q.closed.Load() || q.Len() < q.Cap()
		})
	}
}

// Receive dequeues the oldest item, blocking while the ring is empty and open.
// ok is false only after Close once every accepted item has been received.
func (q *LockFreeQueue[T]) Receive() (T, bool) {
	for attempt := 0; ; attempt++ {
		if item, ok := q.tryPop(); ok {
			q.wake(q.notFull, &q.fullWaiters)
			return item, true
		}

		if q.drained() {
			// A sender may have published between tryPop and the closed check.
			if item, ok := q.tryPop(); ok {
				q.wake(q.notFull, &q.fullWaiters)
				return item, true
			}
			var zero T
			return zero, false
		}

		if attempt < spinAttempts {
			backoff(attempt)
			continue
		}
		q.park(q.notEmpty, &q.emptyWaiters, func() bool {
			return q.drained() || q.Len() > 0
		})
	}
}

// drained reports whether no further item can ever arrive.
func (q *LockFreeQueue[T]) drained() bool {
	return q.closed.Load() && q.inflight.Load() == 0
}

// park blocks on cond until ready reports true, a peer signals, or
// maxParkTime elapses.
func (q *LockFreeQueue[T]) park(cond *sync.Cond, waiters *atomic.Int32, ready func() bool) {
	waiters.Add(1)
	defer waiters.Add(-1)

	q.parkMu.Lock()
	defer q.parkMu.Unlock()

	// Double-check under the lock; wakers take parkMu before broadcasting.
	if ready() {
		return
	}

	timer := time.AfterFunc(maxParkTime, func() {
		q.parkMu.Lock()
		cond.Broadcast()
		q.parkMu.Unlock()
	})
	cond.Wait()
	timer.Stop()
}

// wake broadcasts cond if anyone is parked on it.
func (q *LockFreeQueue[T]) wake(cond *sync.Cond, waiters *atomic.Int32) {
	if waiters.Load() == 0 {
		return
	}
	q.parkMu.Lock()
	cond.Broadcast()
	q.parkMu.Unlock()
}

// Close stops accepting items. Receivers drain what was accepted and then
// observe ok == false. Close is idempotent.
func (q *LockFreeQueue[T]) Close() {
	if q.closed.Swap(true) {
		return
	}
	q.parkMu.Lock()
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
	q.parkMu.Unlock()
}

// Len returns the approximate number of queued items.
// Tail is loaded before head so the result never exceeds Cap.
func (q *LockFreeQueue[T]) Len() int {
	tail := q.tail.Load()
	head := q.head.Load()
	if head >= tail {
		return 0
	}
	return int(tail - head)
}

// Cap returns the ring capacity.
func (q *LockFreeQueue[T]) Cap() int {
	return len(q.cells)
}

// HighWater returns the largest length observed after a successful Send.
func (q *LockFreeQueue[T]) HighWater() int {
	return int(q.highWater.Load())
}

func (q *LockFreeQueue[T]) recordLen() {
	n := int64(q.Len())
	for {
		cur := q.highWater.Load()
		if n <= cur || q.highWater.CompareAndSwap(cur, n) {
			return
		}
	}
}
