// Package harness times a workload over a fixed number of runs, treating
// the first run as warm-up.
//
// Every scenario goes through Measure, so all of them share one timing
// protocol: run 0 is timed and its output kept, but only runs 1..n-1 enter
// the mean.
package harness

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
)

// MinRuns is the smallest accepted run count: one warm-up plus at least two
// measured runs.
const MinRuns = 3

// Run describes one timed execution of a workload.
type Run struct {
	Index int
}

// Warmup reports whether this run is excluded from the mean.
func (r Run) Warmup() bool { return r.Index == 0 }

// ShouldLog reports whether the workload should emit its narrative
// output. Only the warm-up run does, so logging never skews a measured run.
func (r Run) ShouldLog() bool { return r.Index == 0 }

// Observer is notified after every timed run.
type Observer interface {
	RunMeasured(scenario string, run Run, elapsed time.Duration)
}

// Harness holds the timing protocol shared by all scenarios.
type Harness struct {
	runs     int
	now      func() time.Time
	logger   *slog.Logger
	observer Observer
}

// Option configures a Harness.
type Option func(*Harness)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(h *Harness) {
		if now != nil {
			h.now = now
		}
	}
}

// WithLogger sets the logger used for per-run debug events.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithObserver reports every run duration to o.
func WithObserver(o Observer) Option {
	return func(h *Harness) {
		h.observer = o
	}
}

// New returns a harness performing runs timed executions.
// It panics if runs < MinRuns.
func New(runs int, opts ...Option) *Harness {
	if runs < MinRuns {
		panic(fmt.Sprintf("harness: need at least %d runs, got %d", MinRuns, runs))
	}

	h := &Harness{
		runs:   runs,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Runs returns the configured run count.
func (h *Harness) Runs() int { return h.runs }

// Logger returns the harness logger.
func (h *Harness) Logger() *slog.Logger { return h.logger }

// Report is the outcome of Measure.
type Report[T any] struct {
	ID          uuid.UUID
	Name        string
	Durations   []time.Duration
	Outputs     []T
	MeanSeconds float64
}

// Mean returns MeanSeconds as a Duration.
func (r Report[T]) Mean() time.Duration {
	return time.Duration(math.Round(r.MeanSeconds * float64(time.Second)))
}

// MeanMillis returns the mean in milliseconds.
func (r Report[T]) MeanMillis() float64 {
	return r.MeanSeconds * 1000
}

// Last returns the output of the final run.
func (r Report[T]) Last() T {
	return r.Outputs[len(r.Outputs)-1]
}

// Measured returns the outputs of the runs that enter the mean.
func (r Report[T]) Measured() []T {
	return r.Outputs[1:]
}

// Measure executes workload sequentially h.Runs() times and records each
// duration and output. The workload receives its Run so it can narrate the
// warm-up run only.
func Measure[T any](h *Harness, name string, workload func(Run) T) Report[T] {
	r := Report[T]{
		ID:        uuid.New(),
		Name:      name,
		Durations: make([]time.Duration, h.runs),
		Outputs:   make([]T, h.runs),
	}
	log := h.logger.With("scenario", name, "run_id", r.ID.String())

	for i := 0; i < h.runs; i++ {
		run := Run{Index: i}

		start := h.now()
		out := workload(run)
		elapsed := h.now().Sub(start)

		r.Durations[i] = elapsed
		r.Outputs[i] = out

		log.Debug("run finished", "run", i, "duration", elapsed, "warmup", run.Warmup())
		if h.observer != nil {
			h.observer.RunMeasured(name, run, elapsed)
		}
	}

	var total float64
	for _, d := range r.Durations[1:] {
		total += d.Seconds()
	}
	r.MeanSeconds = total / float64(h.runs-1)

	return r
}
