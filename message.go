package syncbench

import "time"

// Message is a queue entry: either a job or a termination signal.
type Message[J any] struct {
	job  J
	stop bool
}

// Work wraps a job for the queue.
func Work[J any](job J) Message[J] {
	return Message[J]{job: job}
}

// Stop returns a poison pill.
func Stop[J any]() Message[J] {
	return Message[J]{stop: true}
}

// IsStop reports whether m is a termination signal.
func (m Message[J]) IsStop() bool { return m.stop }

// Job returns the wrapped job. It is the zero value for a stop message.
func (m Message[J]) Job() J { return m.job }

// Observer receives pool events. Implementations must be safe for
// concurrent use; every method is called from worker or submitter goroutines.
type Observer interface {
	JobSubmitted()
	JobProcessed(elapsed time.Duration)
	JobFailed()
	SignalObserved()
	QueueDepth(n int)
}

// NopObserver discards every event.
type NopObserver struct{}

func (NopObserver) JobSubmitted() {}
func (NopObserver) JobProcessed(time.Duration) {}
func (NopObserver) JobFailed() {}
func (NopObserver) SignalObserved() {}
func (NopObserver) QueueDepth(int) {}
