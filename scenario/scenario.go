// Package scenario holds the benchmark programs. Each scenario times its
// workloads with the shared harness, checks them against an oracle, and
// prints per-run timings and a summary table.
package scenario

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/tahsin716/syncbench"
	"github.com/tahsin716/syncbench/config"
	"github.com/tahsin716/syncbench/harness"
	"github.com/tahsin716/syncbench/metrics"
)

// Env is everything a scenario run needs. Zero-valued optional fields are
// replaced by Prepare.
type Env struct {
	Config      *config.Config
	Out         io.Writer
	Logger      *slog.Logger
	Metrics     *metrics.Collector
	Queue       syncbench.QueueKind
	Termination syncbench.Termination
	PinThreads  bool

	mu sync.Mutex
}

// NewEnv builds an Env from a validated config. Pipeline settings are
// taken from the config and may be overridden afterwards.
func NewEnv(cfg *config.Config, out io.Writer, logger *slog.Logger) (*Env, error) {
	q, err := syncbench.ParseQueueKind(cfg.Pipeline.Queue)
	if err != nil {
		return nil, err
	}
	term, err := syncbench.ParseTermination(cfg.Pipeline.Termination)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Env{
		Config:      cfg,
		Out:         out,
		Logger:      logger,
		Queue:       q,
		Termination: term,
		PinThreads:  cfg.Pipeline.PinThreads,
	}, nil
}

func (e *Env) harness() *harness.Harness {
	opts := []harness.Option{harness.WithLogger(e.Logger)}
	if e.Metrics != nil {
		opts = append(opts, harness.WithObserver(e.Metrics))
	}
	return harness.New(e.Config.Harness.Runs, opts...)
}

func (e *Env) poolObserver() syncbench.Observer {
	if e.Metrics == nil {
		return nil
	}
	return e.Metrics
}

// say prints a narrative line during the warm-up run only. It is safe to
// call from concurrent goroutines.
func (e *Env) say(run harness.Run, format string, args ...interface{}) {
	if !run.ShouldLog() {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintf(e.Out, format+"\n", args...)
}

func (e *Env) printf(format string, args ...interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintf(e.Out, format, args...)
}

func runsLine(h *harness.Harness) string {
	return fmt.Sprintf("Timed runs: %d (%d enter the mean)", h.Runs(), h.Runs()-1)
}

// Scenario is one benchmark program.
type Scenario struct {
	Name  string
	Short string

	// SizeLabel names the sizing argument, e.g. "number of threads".
	// Empty when the scenario takes none.
	SizeLabel string

	// DefaultSize returns the size used when none is given.
	DefaultSize func(*config.Config) int

	// MaxSize bounds the size for scenarios that allocate in proportion
	// to it. Nil means unbounded.
	MaxSize func(*config.Config) int

	Run func(env *Env, size int) error
}

// TakesSize reports whether the scenario reads a sizing argument.
func (s Scenario) TakesSize() bool { return s.SizeLabel != "" }

// ErrSizeTooLarge reports a size whose up-front allocation is refused.
var ErrSizeTooLarge = errors.New("too large to allocate")

// maxElements caps the int64 elements a scenario allocates up front.
const maxElements = 1 << 28

// CheckSize rejects sizes above MaxSize.
func (s Scenario) CheckSize(cfg *config.Config, n int) error {
	if s.MaxSize == nil {
		return nil
	}
	return checkLimit(n, s.MaxSize(cfg))
}

func checkLimit(n, limit int) error {
	if n > limit {
		return fmt.Errorf("%w: must be at most %d", ErrSizeTooLarge, limit)
	}
	return nil
}

var registry = map[string]Scenario{}

func register(s Scenario) {
	if _, dup := registry[s.Name]; dup {
		panic("scenario: duplicate registration of " + s.Name)
	}
	registry[s.Name] = s
}

// order fixes listing order to the progression of the programs.
var order = []string{
	"hello", "indexed", "race", "mutex", "granularity", "atomic",
	"barrier", "prodcons", "vecsum", "montecarlo", "threadpool", "rwlock",
}

// All returns every registered scenario in listing order.
func All() []Scenario {
	out := make([]Scenario, 0, len(registry))
	for _, name := range order {
		if s, ok := registry[name]; ok {
			out = append(out, s)
		}
	}
	var extra []string
	for name := range registry {
		if !slices.Contains(order, name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		out = append(out, registry[name])
	}
	return out
}

// Lookup returns the scenario registered under name.
func Lookup(name string) (Scenario, bool) {
	s, ok := registry[name]
	return s, ok
}

// failure keeps the first error seen across the runs of a workload.
// Measure runs workloads sequentially, so no locking is needed.
type failure struct {
	err error
}

func (f *failure) record(err error) {
	if err != nil && f.err == nil {
		f.err = err
	}
}
