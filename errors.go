package syncbench

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by queues and pools.
var (
	// ErrQueueClosed is returned by Send once the queue has been closed.
	// Items accepted before Close are still delivered to receivers.
	//
	// Example:
	//  q.Close()
	//  if err := q.Send(job); errors.Is(err, syncbench.ErrQueueClosed) {
	//      log.Println("producer finished late")
	//  }
	ErrQueueClosed = &PoolError{msg: "queue is closed"}

	// ErrPoolStopped is returned by Submit after Stop has delivered the
	// termination signals. The pool cannot accept work again.
	ErrPoolStopped = &PoolError{msg: "pool is stopped"}

	// ErrAlreadyJoined is returned by a second call to Join.
	ErrAlreadyJoined = &PoolError{msg: "pool already joined"}
)

// PoolError represents an error that occurred within a queue or pool.
// It wraps underlying errors and provides context about the operation.
type PoolError struct {
	msg string // Human-readable error message
	err error  // Underlying error (if any)
}

// Error returns a formatted error message.
// If an underlying error exists, it is included in the output.
func (e *PoolError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("syncbench: %s: %v", e.msg, e.err)
	}
	return fmt.Sprintf("syncbench: %s", e.msg)
}

// Unwrap returns the underlying error, allowing use with errors.Is and errors.As.
func (e *PoolError) Unwrap() error {
	return e.err
}

// errInvalidConfig creates an error for invalid pool or queue configuration.
func errInvalidConfig(msg string) error {
	return &PoolError{msg: "invalid config: " + msg}
}

// errWorker attributes an error to the worker that observed it.
func errWorker(workerID int, err error) error {
	return &PoolError{
		msg: fmt.Sprintf("worker %d", workerID),
		err: err,
	}
}

// PanicError wraps a value recovered from a panicking process function
// together with the job that triggered it.
type PanicError struct {
	Value interface{}
	Job   interface{}
	Stack string
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("panic while processing %v: %v", p.Job, p.Value)
}

// AggregateError combines every failure reported by a pool's workers.
type AggregateError struct {
	Errors []error
}

func (a *AggregateError) Error() string {
	if len(a.Errors) == 0 {
		return "no errors"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d error(s) occurred:", len(a.Errors))
	for i, err := range a.Errors {
		fmt.Fprintf(&b, "\n  [%d] %v", i+1, err)
	}
	return b.String()
}

// Unwrap makes AggregateError compatible with errors.Is/errors.As
func (a *AggregateError) Unwrap() []error {
	return a.Errors
}

// IsInvalidConfig reports whether err came from option validation.
func IsInvalidConfig(err error) bool {
	var pe *PoolError
	return errors.As(err, &pe) && strings.HasPrefix(pe.msg, "invalid config: ")
}
