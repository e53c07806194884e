// Package metrics exposes pool and harness events as Prometheus metrics.
//
// # Description
//
// A Collector owns a private registry, so several collectors can coexist in
// one process and in parallel tests. Nothing is served over the network;
// WriteText renders the text exposition format for the CLI's --metrics flag.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package metrics

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/tahsin716/syncbench"
	"github.com/tahsin716/syncbench/harness"
)

// Namespace for all metrics
const metricsNamespace = "syncbench"

// Collector records pool and harness events.
//
// # Fields
//
//   - JobsSubmitted: jobs accepted by pool Submit
//   - JobsProcessed: jobs whose process function returned
//   - JobsFailed: jobs whose process function panicked
//   - TerminationSignals: termination signals observed by workers
//   - QueueHighWater: largest queue depth seen right after a submit
//   - JobDuration: time inside the process function
//   - RunDuration: timed harness runs, by scenario
type Collector struct {
	registry *prometheus.Registry

	JobsSubmitted      prometheus.Counter
	JobsProcessed      prometheus.Counter
	JobsFailed         prometheus.Counter
	TerminationSignals prometheus.Counter
	QueueHighWater     prometheus.Gauge
	JobDuration        prometheus.Histogram
	RunDuration        *prometheus.HistogramVec

	hwMu      sync.Mutex
	highWater int64
}

var (
	_ syncbench.Observer = (*Collector)(nil)
	_ harness.Observer   = (*Collector)(nil)
)

// New creates a Collector with its own registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		JobsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "jobs_submitted_total",
			Help:      "Total jobs accepted by the worker pool",
		}),

		JobsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "jobs_processed_total",
			Help:      "Total jobs whose process function returned",
		}),

		JobsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "jobs_failed_total",
			Help:      "Total jobs whose process function panicked",
		}),

		TerminationSignals: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "termination_signals_total",
			Help:      "Total termination signals observed by workers",
		}),

		QueueHighWater: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "queue_high_water",
			Help:      "Largest job queue depth observed after a submit",
		}),

		JobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "job_duration_seconds",
			Help:      "Time spent inside the process function",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 12), // 1µs to ~4s
		}),

		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of each timed harness run",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3.3s
		}, []string{"scenario"}),
	}
}

// Registry returns the private registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) JobSubmitted() { c.JobsSubmitted.Inc() }

func (c *Collector) JobProcessed(elapsed time.Duration) {
	c.JobsProcessed.Inc()
	c.JobDuration.Observe(elapsed.Seconds())
}

func (c *Collector) JobFailed() { c.JobsFailed.Inc() }

func (c *Collector) SignalObserved() { c.TerminationSignals.Inc() }

// QueueDepth raises the high-water gauge if n exceeds it. The compare and
// the Set happen under one lock so the gauge never moves backwards.
func (c *Collector) QueueDepth(n int) {
	v := int64(n)
	c.hwMu.Lock()
	defer c.hwMu.Unlock()
	if v <= c.highWater {
		return
	}
	c.highWater = v
	c.QueueHighWater.Set(float64(v))
}

// RunMeasured records one harness run.
func (c *Collector) RunMeasured(scenario string, _ harness.Run, elapsed time.Duration) {
	c.RunDuration.WithLabelValues(scenario).Observe(elapsed.Seconds())
}

// WriteText writes every gathered metric family in the Prometheus text
// exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
