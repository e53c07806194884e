package harness

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when the workload tells it to.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type recordingObserver struct {
	runs []Run
}

func (o *recordingObserver) RunMeasured(_ string, run Run, _ time.Duration) {
	o.runs = append(o.runs, run)
}

func TestMeasure_SlowWarmupExcludedFromMean(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	h := New(5, WithClock(clock.Now))

	durations := []time.Duration{
		10 * time.Second, // warm-up
		100 * time.Millisecond,
		200 * time.Millisecond,
		300 * time.Millisecond,
		400 * time.Millisecond,
	}

	report := Measure(h, "slow-start", func(run Run) int {
		clock.Advance(durations[run.Index])
		return run.Index * 2
	})

	assert.Equal(t, durations, report.Durations)
	assert.Equal(t, []int{0, 2, 4, 6, 8}, report.Outputs)
	assert.InDelta(t, 0.25, report.MeanSeconds, 1e-12)
	assert.Equal(t, 250*time.Millisecond, report.Mean())
	assert.InDelta(t, 250.0, report.MeanMillis(), 1e-9)
	assert.Equal(t, 8, report.Last())
	assert.Equal(t, []int{2, 4, 6, 8}, report.Measured())
	assert.NotEqual(t, uuid.Nil, report.ID)
}

func TestMeasure_OnlyWarmupShouldLog(t *testing.T) {
	obs := &recordingObserver{}
	h := New(4, WithObserver(obs))

	var logged []int
	Measure(h, "flags", func(run Run) struct{} {
		if run.ShouldLog() {
			logged = append(logged, run.Index)
		}
		assert.Equal(t, run.Index == 0, run.Warmup())
		return struct{}{}
	})

	assert.Equal(t, []int{0}, logged)
	require.Len(t, obs.runs, 4)
	for i, r := range obs.runs {
		assert.Equal(t, i, r.Index)
	}
}

func TestMeasure_RunsSequentially(t *testing.T) {
	h := New(3)
	active := 0
	Measure(h, "seq", func(Run) int {
		active++
		defer func() { active-- }()
		require.Equal(t, 1, active)
		return 0
	})
}

func TestMeasure_LogsEachRun(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := New(3, WithLogger(logger))

	report := Measure(h, "logged", func(Run) int { return 1 })

	out := buf.String()
	assert.Contains(t, out, "scenario=logged")
	assert.Contains(t, out, "run_id="+report.ID.String())
	assert.Contains(t, out, "run=2")
}

func TestNew_PanicsBelowThreeRuns(t *testing.T) {
	assert.Panics(t, func() { New(2) })
	assert.Panics(t, func() { New(0) })
	assert.NotPanics(t, func() { New(MinRuns) })
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check("vecsum", "total", 10, 10))

	err := Check("vecsum", "total", uint64(10), uint64(9))
	require.Error(t, err)

	var ae *AssertionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, uint64(10), ae.Expected)
	assert.Equal(t, uint64(9), ae.Obtained)
	assert.Equal(t, "vecsum: total: expected 10, obtained 9", err.Error())

	err = CheckAll("pool", "sum", 5, []int{5, 5, 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run 3")
}

func TestSpeedupEfficiency(t *testing.T) {
	s := Speedup(4, 1)
	assert.InDelta(t, 4.0, s, 1e-12)
	assert.InDelta(t, 0.5, Efficiency(s, 8), 1e-12)
	assert.Zero(t, Speedup(1, 0))
	assert.Zero(t, Efficiency(1, 0))
}
