package syncbench

import (
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// worker represents a single worker goroutine
type worker[J, R any] struct {
	id   int
	pool *Pool[J, R]

	// Metrics
	processed uint64 // atomic
	failed    uint64 // atomic
	signals   uint64 // atomic
}

func newWorker[J, R any](id int, pool *Pool[J, R]) *worker[J, R] {
	return &worker[J, R]{id: id, pool: pool}
}

// run is the main worker loop. It returns after exactly one termination
// signal: a poison pill, or a drained read from a closed queue.
func (w *worker[J, R]) run() {
	cfg := &w.pool.config

	if cfg.PinWorkerThreads {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	if cfg.OnWorkerStart != nil {
		cfg.OnWorkerStart(w.id)
	}
	cfg.Logger.Debug("worker started", "worker", w.id)

	for {
		msg, ok := w.pool.queue.Receive()
		if !ok || msg.IsStop() {
			atomic.AddUint64(&w.signals, 1)
			cfg.Observer.SignalObserved()
			break
		}

		w.execute(msg.Job())
	}

	cfg.Logger.Debug("worker stopped",
		"worker", w.id,
		"processed", atomic.LoadUint64(&w.processed),
		"failed", atomic.LoadUint64(&w.failed),
	)
	if cfg.OnWorkerStop != nil {
		cfg.OnWorkerStop(w.id)
	}
}

// execute runs one job with panic recovery and publishes its result.
// A panicking job produces no result; the worker keeps draining so the
// shutdown protocol still completes.
func (w *worker[J, R]) execute(job J) {
	cfg := &w.pool.config

	defer func() {
		if r := recover(); r != nil {
			atomic.AddUint64(&w.failed, 1)
			cfg.Observer.JobFailed()

			perr := &PanicError{Value: r, Job: job, Stack: string(debug.Stack())}
			cfg.Logger.Error("job panicked", "worker", w.id, "job", job, "panic", r)
			w.pool.recordError(errWorker(w.id, perr))
		}
	}()

	start := time.Now()
	result := w.pool.process(job)
	elapsed := time.Since(start)

	w.pool.recordLatency(elapsed)
	atomic.AddUint64(&w.processed, 1)
	cfg.Observer.JobProcessed(elapsed)

	w.pool.results <- result
}

func (w *worker[J, R]) stats() WorkerStats {
	return WorkerStats{
		ID:        w.id,
		Processed: atomic.LoadUint64(&w.processed),
		Failed:    atomic.LoadUint64(&w.failed),
		Signals:   atomic.LoadUint64(&w.signals),
	}
}
