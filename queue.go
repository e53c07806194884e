package syncbench

import (
	"fmt"
	"strings"
)

// Queue is a bounded, blocking, multi-producer multi-consumer FIFO.
//
// Send blocks while the queue holds Cap() items and returns ErrQueueClosed
// once Close has been called, including for a sender already blocked on a
// full queue. Close never waits for such a sender. Receive blocks while the
// queue is empty and open; it returns ok == false only after Close and a full
// drain, never on a transient empty read. Every accepted item is received
// exactly once.
type Queue[T any] interface {
	Send(item T) error
	Receive() (item T, ok bool)
	Close()
	Len() int
	Cap() int
}

// HighWaterer is implemented by queues that track the largest length they
// have ever reached.
type HighWaterer interface {
	HighWater() int
}

// QueueKind selects the internal discipline of a Queue.
type QueueKind int

const (
	// Locked uses one mutex and two condition variables.
	Locked QueueKind = iota
	// LockFree uses a sequence-numbered ring with CAS on both ends.
	LockFree
	// Channel uses a buffered Go channel.
	Channel
)

func (k QueueKind) String() string {
	switch k {
	case Locked:
		return "locked"
	case LockFree:
		return "lockfree"
	case Channel:
		return "channel"
	default:
		return fmt.Sprintf("QueueKind(%d)", int(k))
	}
}

// ParseQueueKind maps a flag value to a QueueKind.
func ParseQueueKind(s string) (QueueKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "locked", "mutex":
		return Locked, nil
	case "lockfree", "lock-free", "ring":
		return LockFree, nil
	case "channel", "chan":
		return Channel, nil
	}
	return 0, errInvalidConfig(fmt.Sprintf("unknown queue kind %q", s))
}

// NewQueue builds a queue of the given kind and capacity.
// LockFree requires a power-of-two capacity of at least 2.
func NewQueue[T any](kind QueueKind, capacity int) (Queue[T], error) {
	if capacity <= 0 {
		return nil, errInvalidConfig("queue capacity must be > 0")
	}

	switch kind {
	case Locked:
		return NewLockedQueue[T](capacity), nil
	case LockFree:
		if !validLockFreeCapacity(capacity) {
			return nil, errInvalidConfig("lock-free queue capacity must be a power of 2 and >= 2")
		}
		return NewLockFreeQueue[T](capacity), nil
	case Channel:
		return NewChanQueue[T](capacity), nil
	}
	return nil, errInvalidConfig(fmt.Sprintf("unknown queue kind %d", int(kind)))
}

func validLockFreeCapacity(n int) bool {
	return n >= 2 && (n&(n-1)) == 0
}
