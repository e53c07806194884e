package syncbench

import (
	"sync"
	"sync/atomic"
	"time"
)

// ProcessFunc turns one job into one result. It must not retain the job.
type ProcessFunc[J, R any] func(job J) R

// Pool is a fixed set of workers draining a shared job queue.
//
// The lifecycle is strict: Submit any number of jobs, call Stop once every
// producer has finished, then Join exactly once. Calling Join before Stop
// blocks forever, because no worker can observe its termination signal.
type Pool[J, R any] struct {
	config  Config
	queue   Queue[Message[J]]
	process ProcessFunc[J, R]
	workers []*worker[J, R]
	results chan R

	wg      sync.WaitGroup
	stopped atomic.Bool
	joined  atomic.Bool

	submitted uint64 // atomic

	// Latency tracking
	latencySum   uint64 // atomic
	latencyCount uint64 // atomic
	latencyMax   uint64 // atomic

	errMu  sync.Mutex
	errors []error
}

// NewPool starts the workers and returns a running pool.
// It returns an error if the configuration is invalid.
//
// Example:
//
//	q := syncbench.NewLockedQueue[syncbench.Message[int]](32)
//	pool, err := syncbench.NewPool(q, square,
//	    syncbench.WithNumWorkers(4),
//	    syncbench.WithTermination(syncbench.CloseQueue),
//	)
func NewPool[J, R any](q Queue[Message[J]], process ProcessFunc[J, R], opts ...Option) (*Pool[J, R], error) {
	if q == nil {
		return nil, errInvalidConfig("queue must not be nil")
	}
	if process == nil {
		return nil, errInvalidConfig("process function must not be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	p := &Pool[J, R]{
		config:  cfg,
		queue:   q,
		process: process,
		workers: make([]*worker[J, R], cfg.NumWorkers),
		results: make(chan R, cfg.ResultBuffer),
	}

	for i := range p.workers {
		p.workers[i] = newWorker(i, p)
	}

	p.wg.Add(len(p.workers))
	for _, w := range p.workers {
		go func(wk *worker[J, R]) {
			defer p.wg.Done()
			wk.run()
		}(w)
	}

	return p, nil
}

// Submit enqueues job, blocking while the queue is full.
// Returns ErrPoolStopped after Stop.
func (p *Pool[J, R]) Submit(job J) error {
	if p.stopped.Load() {
		return ErrPoolStopped
	}

	if err := p.queue.Send(Work(job)); err != nil {
		return err
	}

	atomic.AddUint64(&p.submitted, 1)
	p.config.Observer.JobSubmitted()
	p.config.Observer.QueueDepth(p.queue.Len())
	return nil
}

// Stop delivers the termination signals: one poison pill per worker, or a
// queue close. It must only be called after every producer has returned.
// A second call returns ErrPoolStopped.
func (p *Pool[J, R]) Stop() error {
	if !p.stopped.CompareAndSwap(false, true) {
		return ErrPoolStopped
	}

	switch p.config.Termination {
	case CloseQueue:
		p.queue.Close()
		p.config.Logger.Debug("queue closed", "workers", len(p.workers))
	default:
		for range p.workers {
			if err := p.queue.Send(Stop[J]()); err != nil {
				return err
			}
		}
		p.config.Logger.Debug("poison pills sent", "count", len(p.workers))
	}
	return nil
}

// Results returns the channel workers publish to. It is closed by Join.
func (p *Pool[J, R]) Results() <-chan R {
	return p.results
}

// Join blocks until every worker has stopped, then closes the results
// channel. It returns an *AggregateError if any job panicked.
//
// Join must be called exactly once, after Stop. A second call returns
// ErrAlreadyJoined.
func (p *Pool[J, R]) Join() error {
	if !p.joined.CompareAndSwap(false, true) {
		return ErrAlreadyJoined
	}

	p.wg.Wait()
	close(p.results)

	p.errMu.Lock()
	defer p.errMu.Unlock()
	if len(p.errors) == 0 {
		return nil
	}
	return &AggregateError{Errors: append([]error(nil), p.errors...)}
}

// Workers returns the fixed worker count.
func (p *Pool[J, R]) Workers() int {
	return len(p.workers)
}

func (p *Pool[J, R]) recordError(err error) {
	p.errMu.Lock()
	p.errors = append(p.errors, err)
	p.errMu.Unlock()
}

// recordLatency updates latency metrics
func (p *Pool[J, R]) recordLatency(d time.Duration) {
	ns := uint64(d.Nanoseconds())
	atomic.AddUint64(&p.latencySum, ns)
	atomic.AddUint64(&p.latencyCount, 1)

	for {
		oldMax := atomic.LoadUint64(&p.latencyMax)
		if ns <= oldMax || atomic.CompareAndSwapUint64(&p.latencyMax, oldMax, ns) {
			break
		}
	}
}

// Stats returns a snapshot of pool statistics.
//
// Note: Stats are collected without locks, so values may be slightly
// inconsistent while workers are running. After Join they are exact.
func (p *Pool[J, R]) Stats() Stats {
	s := Stats{
		Submitted:     atomic.LoadUint64(&p.submitted),
		NumWorkers:    len(p.workers),
		QueueLen:      p.queue.Len(),
		QueueCapacity: p.queue.Cap(),
		WorkerStats:   make([]WorkerStats, len(p.workers)),
	}

	if hw, ok := p.queue.(HighWaterer); ok {
		s.QueueHighWater = hw.HighWater()
	}

	for i, w := range p.workers {
		ws := w.stats()
		s.WorkerStats[i] = ws
		s.Processed += ws.Processed
		s.Failed += ws.Failed
		s.Signals += ws.Signals
	}

	if count := atomic.LoadUint64(&p.latencyCount); count > 0 {
		s.LatencyAvg = time.Duration(atomic.LoadUint64(&p.latencySum) / count)
	}
	s.LatencyMax = time.Duration(atomic.LoadUint64(&p.latencyMax))

	return s
}
