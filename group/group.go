// Package group spawns a fixed set of goroutines, the stand-in for OS
// threads in the benchmark scenarios, and joins them with panic capture.
package group

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Group manages a collection of goroutines with structured concurrency
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	config Config

	// Error handling
	errors    []error
	errorsMux sync.Mutex
	firstErr  atomic.Pointer[error] // used in FailFast

	next atomic.Int64
}

// New creates a new Group with the given options. In FailFast mode the
// context passed to each goroutine is cancelled by the first error.
func New(opts ...Option) *Group {
	config := BuildConfig(opts)
	groupCtx, cancel := context.WithCancel(context.Background())

	return &Group{
		ctx:    groupCtx,
		cancel: cancel,
		config: config,
	}
}

// Go runs fn in a new goroutine with panic recovery.
// id is the spawn order, starting at 0.
func (g *Group) Go(fn func(ctx context.Context, id int) error) {
	id := int(g.next.Add(1) - 1)
	g.wg.Add(1)

	go func() {
		defer g.wg.Done()

		if g.config.pinThreads {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
		}

		defer func() {
			if r := recover(); r != nil {
				g.handleError(&PanicError{
					ID:    id,
					Value: r,
					Stack: string(debug.Stack()),
				})
			}
		}()

		if err := fn(g.ctx, id); err != nil {
			g.handleError(err)
		}
	}()
}

// Wait waits for all goroutines to complete and returns any errors.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.cancel()

	switch g.config.errorMode {
	case FailFast:
		if p := g.firstErr.Load(); p != nil {
			return *p
		}
		return nil

	default:
		g.errorsMux.Lock()
		collected := append([]error(nil), g.errors...)
		g.errorsMux.Unlock()

		if len(collected) > 0 {
			return &AggregateError{Errors: collected}
		}
		return nil
	}
}

// handleError processes an error according to the error mode
func (g *Group) handleError(err error) {
	switch g.config.errorMode {
	case FailFast:
		if g.firstErr.CompareAndSwap(nil, &err) {
			g.cancel()
		}

	case CollectAll:
		g.errorsMux.Lock()
		g.errors = append(g.errors, err)
		g.errorsMux.Unlock()
	}
}

// Spawn starts n goroutines running fn(id) and returns their results in
// spawn order, independent of completion order. A panicking goroutine
// leaves its slot at the zero value and is reported in the error.
func Spawn[T any](n int, fn func(id int) T, opts ...Option) ([]T, error) {
	results := make([]T, n)
	g := New(opts...)
	for i := 0; i < n; i++ {
		g.Go(func(_ context.Context, id int) error {
			results[id] = fn(id)
			return nil
		})
	}
	err := g.Wait()
	return results, err
}

// Run starts n goroutines running fn(id) and waits for all of them.
func Run(n int, fn func(id int), opts ...Option) error {
	_, err := Spawn(n, func(id int) struct{} {
		fn(id)
		return struct{}{}
	}, opts...)
	return err
}
