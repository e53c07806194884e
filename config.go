package syncbench

import (
	"fmt"
	"log/slog"
	"strings"
)

// Termination selects how a pool tells its workers to stop.
type Termination int

const (
	// PoisonPill enqueues one stop message per worker after producers finish.
	PoisonPill Termination = iota
	// CloseQueue closes the job queue; each worker stops on its drained read.
	CloseQueue
)

func (t Termination) String() string {
	switch t {
	case PoisonPill:
		return "pill"
	case CloseQueue:
		return "close"
	default:
		return fmt.Sprintf("Termination(%d)", int(t))
	}
}

// ParseTermination maps a flag value to a Termination.
func ParseTermination(s string) (Termination, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pill", "poison", "poison-pill":
		return PoisonPill, nil
	case "close", "close-queue":
		return CloseQueue, nil
	}
	return 0, errInvalidConfig(fmt.Sprintf("unknown termination mode %q", s))
}

// Config contains all configuration options for a worker pool
type Config struct {
	// NumWorkers is the fixed number of worker goroutines.
	// Must be >= 1. Defaults to 4.
	NumWorkers int

	// ResultBuffer is the capacity of the results channel.
	// A zero buffer makes every worker hand off directly to the aggregator.
	ResultBuffer int

	// Termination selects poison pills or queue close for shutdown.
	Termination Termination

	// PinWorkerThreads locks each worker goroutine to its own OS thread
	// for its whole lifetime.
	PinWorkerThreads bool

	// OnWorkerStart is called on the worker goroutine before its first receive
	OnWorkerStart func(workerID int)

	// OnWorkerStop is called on the worker goroutine after its termination signal
	OnWorkerStop func(workerID int)

	// Observer receives pool events, typically a metrics collector.
	Observer Observer

	// Logger receives worker lifecycle and failure events.
	Logger *slog.Logger
}

// Option configures a pool.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		NumWorkers:   4,
		ResultBuffer: 64,
		Termination:  PoisonPill,
		Observer:     NopObserver{},
		Logger:       slog.New(slog.DiscardHandler),
	}
}

// WithNumWorkers sets the number of worker goroutines.
// Values below 1 are ignored.
func WithNumWorkers(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.NumWorkers = n
		}
	}
}

// WithResultBuffer sets the results channel capacity.
func WithResultBuffer(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.ResultBuffer = n
		}
	}
}

// WithTermination selects the shutdown protocol.
func WithTermination(t Termination) Option {
	return func(c *Config) {
		c.Termination = t
	}
}

// WithPinnedWorkers locks every worker to an OS thread.
func WithPinnedWorkers(pin bool) Option {
	return func(c *Config) {
		c.PinWorkerThreads = pin
	}
}

// WithWorkerHooks installs start and stop callbacks. Either may be nil.
func WithWorkerHooks(onStart, onStop func(workerID int)) Option {
	return func(c *Config) {
		c.OnWorkerStart = onStart
		c.OnWorkerStop = onStop
	}
}

// WithObserver routes pool events to o.
func WithObserver(o Observer) Option {
	return func(c *Config) {
		if o != nil {
			c.Observer = o
		}
	}
}

// WithLogger sets the pool logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

func (c *Config) validate() error {
	if c.NumWorkers < 1 {
		return errInvalidConfig("NumWorkers must be >= 1")
	}

	if c.ResultBuffer < 0 {
		return errInvalidConfig("ResultBuffer must be >= 0")
	}

	if c.Termination != PoisonPill && c.Termination != CloseQueue {
		return errInvalidConfig(fmt.Sprintf("unknown termination %d", int(c.Termination)))
	}

	return nil
}
