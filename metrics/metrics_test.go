package metrics

import (
	"bytes"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahsin716/syncbench"
	"github.com/tahsin716/syncbench/harness"
)

func TestCollector_PoolEvents(t *testing.T) {
	c := New()

	q := syncbench.NewLockedQueue[syncbench.Message[int]](8)
	pool, err := syncbench.NewPool(q, func(n int) int { return n },
		syncbench.WithNumWorkers(3),
		syncbench.WithObserver(c),
	)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for range pool.Results() {
		}
		close(done)
	}()

	for i := 0; i < 40; i++ {
		require.NoError(t, pool.Submit(i))
	}
	require.NoError(t, pool.Stop())
	require.NoError(t, pool.Join())
	<-done

	assert.Equal(t, 40.0, testutil.ToFloat64(c.JobsSubmitted))
	assert.Equal(t, 40.0, testutil.ToFloat64(c.JobsProcessed))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.JobsFailed))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.TerminationSignals))

	assert.LessOrEqual(t, testutil.ToFloat64(c.QueueHighWater), 8.0)
}

func TestCollector_QueueDepthOnlyRises(t *testing.T) {
	c := New()
	c.QueueDepth(5)
	c.QueueDepth(2)
	c.QueueDepth(7)
	c.QueueDepth(6)
	assert.Equal(t, 7.0, testutil.ToFloat64(c.QueueHighWater))
}

func TestCollector_QueueDepthConcurrentEndsAtMax(t *testing.T) {
	for round := 0; round < 50; round++ {
		c := New()
		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for n := g; n <= 1000; n += 8 {
					c.QueueDepth(n)
				}
			}(g)
		}
		wg.Wait()
		require.Equal(t, 1000.0, testutil.ToFloat64(c.QueueHighWater), "round %d", round)
	}
}

func TestCollector_HarnessRuns(t *testing.T) {
	c := New()
	h := harness.New(4, harness.WithObserver(c))
	harness.Measure(h, "vecsum", func(harness.Run) int { return 0 })

	assert.Equal(t, 1, testutil.CollectAndCount(c.RunDuration))

	var buf bytes.Buffer
	require.NoError(t, c.WriteText(&buf))
	out := buf.String()
	assert.Contains(t, out, `syncbench_run_duration_seconds_count{scenario="vecsum"} 4`)
	assert.Contains(t, out, "syncbench_jobs_submitted_total 0")
}

func TestCollector_IsolatedRegistries(t *testing.T) {
	a, b := New(), New()
	a.JobSubmitted()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.JobsSubmitted))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.JobsSubmitted))
	assert.NotSame(t, a.Registry(), b.Registry())
}
