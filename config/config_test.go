package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_MatchesDocumentedValues(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, 5, c.Harness.Runs)
	assert.Equal(t, "locked", c.Pipeline.Queue)
	assert.Equal(t, "pill", c.Pipeline.Termination)

	s := c.Scenarios
	assert.Equal(t, 1_000_000, s.Race.Iterations)
	assert.Equal(t, 1000, s.Granularity.Batch)
	assert.Equal(t, 200*time.Microsecond, s.Barrier.PhaseWork)
	assert.Equal(t, 150*time.Microsecond, s.ProdCons.ItemWork)
	assert.Equal(t, 32, s.ProdCons.Capacity)
	assert.Equal(t, []int{1, 2, 4, 8}, s.VecSum.Threads)
	assert.Equal(t, 20_000_000, s.VecSum.DefaultLength)
	assert.Equal(t, []int{1, 5, 25}, s.MonteCarlo.Multipliers)
	assert.Equal(t, []int{2, 4, 8}, s.ThreadPool.PoolSizes)
	assert.Equal(t, 64, s.RWLock.Keys)
}

func TestLoad_OverlaysUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
harness:
  runs: 7
pipeline:
  queue: lockfree
scenarios:
  prodcons:
    item_work: 1ms
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, c.Harness.Runs)
	assert.Equal(t, "lockfree", c.Pipeline.Queue)
	assert.Equal(t, time.Millisecond, c.Scenarios.ProdCons.ItemWork)
	// untouched keys keep their defaults
	assert.Equal(t, 2, c.Scenarios.ProdCons.Producers)
	assert.Equal(t, "pill", c.Pipeline.Termination)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, c.Harness.Runs)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"two runs", func(c *Config) { c.Harness.Runs = 2 }, "harness.runs"},
		{"zero workers", func(c *Config) { c.Scenarios.ProdCons.Workers = 0 }, "scenarios.prodcons.workers"},
		{"empty threads", func(c *Config) { c.Scenarios.VecSum.Threads = nil }, "scenarios.vecsum.threads"},
		{"bad queue", func(c *Config) { c.Pipeline.Queue = "stack" }, "pipeline.queue"},
		{"bad termination", func(c *Config) { c.Pipeline.Termination = "kill" }, "pipeline.termination"},
		{"zero batch", func(c *Config) { c.Scenarios.Granularity.Batch = 0 }, "scenarios.granularity.batch"},
		{
			"lockfree needs power of two",
			func(c *Config) {
				c.Pipeline.Queue = "lockfree"
				c.Scenarios.ThreadPool.Capacity = 100
			},
			"scenarios.threadpool.capacity",
		},
		{
			"lockfree single cell",
			func(c *Config) {
				c.Pipeline.Queue = "lockfree"
				c.Scenarios.ProdCons.Capacity = 1
			},
			"scenarios.prodcons.capacity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Default()
			require.NoError(t, err)
			tt.mutate(c)

			err = c.Validate()
			require.Error(t, err)

			var inv *InvalidError
			require.True(t, errors.As(err, &inv))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
