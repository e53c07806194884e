package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"

	"github.com/tahsin716/syncbench"
	"golang.org/x/sync/errgroup"
)

// Plan describes one run: Jobs jobs built by Source across Producers, each
// turned into one result by Process and folded from Zero.
type Plan[J, R any] struct {
	Jobs      int
	Producers int
	Source    Source[J]
	Process   syncbench.ProcessFunc[J, R]
	Zero      R
	Fold      Fold[R]
}

func (p Plan[J, R]) validate() error {
	switch {
	case p.Jobs < 0:
		return fmt.Errorf("pipeline: job count must not be negative, got %d", p.Jobs)
	case p.Producers < 1:
		return fmt.Errorf("pipeline: need at least one producer, got %d", p.Producers)
	case p.Source == nil || p.Process == nil || p.Fold == nil:
		return errors.New("pipeline: source, process and fold are required")
	}
	return nil
}

// Outcome is what one execution produced.
type Outcome[R any] struct {
	Value    R
	Produced int
	Consumed int
	Signals  int
	Complete bool

	// Pool is set by Pooled executions only.
	Pool *syncbench.Stats
}

// Executor runs a Plan to completion. Errors report failures of the run
// itself, such as a panicking job; a result that disagrees with an oracle
// is for the caller to detect.
type Executor[J, R any] interface {
	Name() string
	Execute(plan Plan[J, R]) (Outcome[R], error)
}

// Sequential runs every job on the calling goroutine, in global order.
type Sequential[J, R any] struct{}

func (Sequential[J, R]) Name() string { return "sequential" }

func (Sequential[J, R]) Execute(plan Plan[J, R]) (Outcome[R], error) {
	out := Outcome[R]{Value: plan.Zero}
	if err := plan.validate(); err != nil {
		return out, err
	}

	for p := 0; p < plan.Producers; p++ {
		offset := Offset(plan.Jobs, plan.Producers, p)
		for local := 0; local < Share(plan.Jobs, plan.Producers, p); local++ {
			id := JobID{Producer: p, Local: local, Global: offset + local}
			out.Value = plan.Fold(out.Value, plan.Process(plan.Source(id)))
			out.Produced++
			out.Consumed++
		}
	}
	out.Complete = out.Consumed == plan.Jobs
	return out, nil
}

// PerJob spawns one goroutine per job. Results go through a channel to the
// aggregator, as they do for Pooled.
type PerJob[J, R any] struct{}

func (PerJob[J, R]) Name() string { return "goroutine per job" }

func (PerJob[J, R]) Execute(plan Plan[J, R]) (Outcome[R], error) {
	out := Outcome[R]{Value: plan.Zero}
	if err := plan.validate(); err != nil {
		return out, err
	}

	results := make(chan R, plan.Jobs)
	var g errgroup.Group
	var produced atomic.Int64
	spawn := func(job J) error {
		produced.Add(1)
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &syncbench.PanicError{Value: r, Job: job, Stack: string(debug.Stack())}
				}
			}()
			results <- plan.Process(job)
			return nil
		})
		return nil
	}

	if err := Produce(plan.Jobs, plan.Producers, plan.Source, spawn); err != nil {
		_ = g.Wait()
		return out, err
	}
	err := g.Wait()
	close(results)
	out.Produced = int(produced.Load())

	agg := Aggregate(results, plan.Zero, plan.Fold, plan.Jobs)
	out.Value, out.Consumed, out.Complete = agg.Value, agg.Received, agg.Complete
	return out, err
}

// Pooled feeds a fixed worker pool through a bounded queue.
type Pooled[J, R any] struct {
	Workers     int
	Capacity    int
	Queue       syncbench.QueueKind
	Termination syncbench.Termination
	PinThreads  bool
	Observer    syncbench.Observer
	Logger      *slog.Logger
}

func (e Pooled[J, R]) Name() string {
	return fmt.Sprintf("pool of %d", e.Workers)
}

func (e Pooled[J, R]) Execute(plan Plan[J, R]) (Outcome[R], error) {
	out := Outcome[R]{Value: plan.Zero}
	if err := plan.validate(); err != nil {
		return out, err
	}

	if e.Workers < 1 {
		return out, fmt.Errorf("pipeline: need at least one worker, got %d", e.Workers)
	}

	logger := e.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	q, err := syncbench.NewQueue[syncbench.Message[J]](e.Queue, e.Capacity)
	if err != nil {
		return out, err
	}

	opts := []syncbench.Option{
		syncbench.WithNumWorkers(e.Workers),
		syncbench.WithTermination(e.Termination),
		syncbench.WithPinnedWorkers(e.PinThreads),
		syncbench.WithLogger(logger),
	}
	if e.Observer != nil {
		opts = append(opts, syncbench.WithObserver(e.Observer))
	}
	pool, err := syncbench.NewPool(q, plan.Process, opts...)
	if err != nil {
		return out, err
	}

	aggregated := make(chan Aggregation[R], 1)
	go func() {
		aggregated <- Aggregate(pool.Results(), plan.Zero, plan.Fold, plan.Jobs)
	}()

	prodErr := Produce(plan.Jobs, plan.Producers, plan.Source, pool.Submit)
	logger.Debug("producers joined", "producers", plan.Producers, "jobs", plan.Jobs)

	stopErr := pool.Stop()
	joinErr := pool.Join()
	agg := <-aggregated

	stats := pool.Stats()
	out.Value, out.Consumed, out.Complete = agg.Value, agg.Received, agg.Complete
	out.Produced = int(stats.Submitted)
	out.Signals = int(stats.Signals)
	out.Pool = &stats

	logger.Debug("pool joined",
		"submitted", stats.Submitted,
		"processed", stats.Processed,
		"signals", stats.Signals,
		"high_water", stats.QueueHighWater,
	)
	return out, errors.Join(prodErr, stopErr, joinErr)
}
