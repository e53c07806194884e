// Package config holds every tunable constant of the benchmark scenarios.
//
// Defaults are embedded from config.yml. Load overlays a user file on top of
// them, so a file only needs the keys it changes.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tahsin716/syncbench"
)

// ─── YAML schema ───────────────────────────────────────────────────────────

type Harness struct {
	Runs int `yaml:"runs"`
}

type Pipeline struct {
	Queue        string `yaml:"queue"`
	Termination  string `yaml:"termination"`
	PinThreads   bool   `yaml:"pin_threads"`
	ResultBuffer int    `yaml:"result_buffer"`
}

// Counter configures the shared-counter scenarios.
type Counter struct {
	DefaultThreads int `yaml:"default_threads"`
	Iterations     int `yaml:"iterations"`
	Batch          int `yaml:"batch,omitempty"`
}

type Indexed struct {
	DefaultThreads int `yaml:"default_threads"`
}

type Barrier struct {
	DefaultThreads int           `yaml:"default_threads"`
	PhaseWork      time.Duration `yaml:"phase_work"`
	SequentialWork time.Duration `yaml:"sequential_work"`
}

type ProdCons struct {
	DefaultItems int           `yaml:"default_items"`
	Capacity     int           `yaml:"capacity"`
	Producers    int           `yaml:"producers"`
	Workers      int           `yaml:"workers"`
	ItemWork     time.Duration `yaml:"item_work"`
}

type VecSum struct {
	DefaultLength int   `yaml:"default_length"`
	Threads       []int `yaml:"threads"`
}

type MonteCarlo struct {
	DefaultSamples int   `yaml:"default_samples"`
	Multipliers    []int `yaml:"multipliers"`
	Threads        []int `yaml:"threads"`
}

type ThreadPool struct {
	DefaultTasks int   `yaml:"default_tasks"`
	BlockSize    int   `yaml:"block_size"`
	Capacity     int   `yaml:"capacity"`
	PoolSizes    []int `yaml:"pool_sizes"`
}

type RWLock struct {
	DefaultReaders  int `yaml:"default_readers"`
	Writers         int `yaml:"writers"`
	ReadsPerReader  int `yaml:"reads_per_reader"`
	WritesPerWriter int `yaml:"writes_per_writer"`
	Keys            int `yaml:"keys"`
}

type Scenarios struct {
	Indexed     Indexed    `yaml:"indexed"`
	Race        Counter    `yaml:"race"`
	Mutex       Counter    `yaml:"mutex"`
	Granularity Counter    `yaml:"granularity"`
	Atomic      Counter    `yaml:"atomic"`
	Barrier     Barrier    `yaml:"barrier"`
	ProdCons    ProdCons   `yaml:"prodcons"`
	VecSum      VecSum     `yaml:"vecsum"`
	MonteCarlo  MonteCarlo `yaml:"montecarlo"`
	ThreadPool  ThreadPool `yaml:"threadpool"`
	RWLock      RWLock     `yaml:"rwlock"`
}

// Config is the root of the YAML document.
type Config struct {
	Harness   Harness   `yaml:"harness"`
	Pipeline  Pipeline  `yaml:"pipeline"`
	Scenarios Scenarios `yaml:"scenarios"`
}

// ─── embedded YAML file ───────────────────────────────────────────────────

//go:embed config.yml
var raw []byte

// Default unmarshals the embedded YAML into Config.
func Default() (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse embedded config: %w", err)
	}
	return &c, nil
}

// Load reads path over the embedded defaults and validates the result.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// InvalidError reports a config value outside its allowed range.
type InvalidError struct {
	Field  string
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid config: %s %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &InvalidError{Field: field, Reason: reason}
}

func atLeast(field string, v, lo int) error {
	if v < lo {
		return invalid(field, fmt.Sprintf("must be >= %d", lo))
	}
	return nil
}

func positive(field string, v int) error {
	return atLeast(field, v, 1)
}

func allPositive(field string, vs []int) error {
	if len(vs) == 0 {
		return invalid(field, "must not be empty")
	}
	for _, v := range vs {
		if v < 1 {
			return invalid(field, "entries must be >= 1")
		}
	}
	return nil
}

func lockFreeCapacity(field string, v int) error {
	if v < 2 || v&(v-1) != 0 {
		return invalid(field, "must be a power of 2 and >= 2 for the lock-free queue")
	}
	return nil
}

// Validate checks the configuration and returns an error if invalid
func (c *Config) Validate() error {
	s := &c.Scenarios

	errs := []error{
		atLeast("harness.runs", c.Harness.Runs, 3),
		positive("scenarios.indexed.default_threads", s.Indexed.DefaultThreads),
		positive("scenarios.barrier.default_threads", s.Barrier.DefaultThreads),
		positive("scenarios.prodcons.default_items", s.ProdCons.DefaultItems),
		positive("scenarios.prodcons.capacity", s.ProdCons.Capacity),
		positive("scenarios.prodcons.producers", s.ProdCons.Producers),
		positive("scenarios.prodcons.workers", s.ProdCons.Workers),
		positive("scenarios.vecsum.default_length", s.VecSum.DefaultLength),
		allPositive("scenarios.vecsum.threads", s.VecSum.Threads),
		positive("scenarios.montecarlo.default_samples", s.MonteCarlo.DefaultSamples),
		allPositive("scenarios.montecarlo.multipliers", s.MonteCarlo.Multipliers),
		allPositive("scenarios.montecarlo.threads", s.MonteCarlo.Threads),
		positive("scenarios.threadpool.default_tasks", s.ThreadPool.DefaultTasks),
		positive("scenarios.threadpool.block_size", s.ThreadPool.BlockSize),
		positive("scenarios.threadpool.capacity", s.ThreadPool.Capacity),
		allPositive("scenarios.threadpool.pool_sizes", s.ThreadPool.PoolSizes),
		positive("scenarios.rwlock.default_readers", s.RWLock.DefaultReaders),
		positive("scenarios.rwlock.writers", s.RWLock.Writers),
		positive("scenarios.rwlock.reads_per_reader", s.RWLock.ReadsPerReader),
		positive("scenarios.rwlock.writes_per_writer", s.RWLock.WritesPerWriter),
		positive("scenarios.rwlock.keys", s.RWLock.Keys),
	}

	counters := []struct {
		name string
		c    Counter
	}{
		{"race", s.Race},
		{"mutex", s.Mutex},
		{"granularity", s.Granularity},
		{"atomic", s.Atomic},
	}
	for _, ctr := range counters {
		errs = append(errs,
			positive("scenarios."+ctr.name+".default_threads", ctr.c.DefaultThreads),
			positive("scenarios."+ctr.name+".iterations", ctr.c.Iterations),
		)
	}
	errs = append(errs, positive("scenarios.granularity.batch", s.Granularity.Batch))

	kind, err := syncbench.ParseQueueKind(c.Pipeline.Queue)
	if err != nil {
		errs = append(errs, invalid("pipeline.queue", err.Error()))
	}
	if kind == syncbench.LockFree {
		errs = append(errs,
			lockFreeCapacity("scenarios.prodcons.capacity", s.ProdCons.Capacity),
			lockFreeCapacity("scenarios.threadpool.capacity", s.ThreadPool.Capacity),
		)
	}
	if _, err := syncbench.ParseTermination(c.Pipeline.Termination); err != nil {
		errs = append(errs, invalid("pipeline.termination", err.Error()))
	}
	if c.Pipeline.ResultBuffer < 0 {
		errs = append(errs, invalid("pipeline.result_buffer", "must be >= 0"))
	}
	if s.Barrier.PhaseWork < 0 || s.Barrier.SequentialWork < 0 || s.ProdCons.ItemWork < 0 {
		errs = append(errs, invalid("scenarios work durations", "must be >= 0"))
	}

	return errors.Join(errs...)
}
