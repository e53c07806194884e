package scenario

import (
	"fmt"

	"github.com/tahsin716/syncbench/config"
	"github.com/tahsin716/syncbench/group"
	"github.com/tahsin716/syncbench/harness"
	"github.com/tahsin716/syncbench/report"
)

func init() {
	register(Scenario{
		Name:        "vecsum",
		Short:       "Parallel vector sum (map-reduce) with 1, 2, 4 and 8 goroutines",
		SizeLabel:   "vector length",
		DefaultSize: func(c *config.Config) int { return c.Scenarios.VecSum.DefaultLength },
		MaxSize:     func(*config.Config) int { return maxElements },
		Run:         runVecSum,
	})
}

// seriesSum returns 0 + 1 + ... + last.
func seriesSum(last int64) int64 {
	if last < 0 {
		return 0
	}
	return last * (last + 1) / 2
}

func sumSlice(data []int64) int64 {
	var s int64
	for _, v := range data {
		s += v
	}
	return s
}

// parallelSum splits data into ceil(len/threads)-sized chunks, one per
// goroutine, and adds the partial sums.
func parallelSum(data []int64, threads int, pin bool) (int64, error) {
	actual := min(threads, max(len(data), 1))
	if actual <= 1 {
		return sumSlice(data), nil
	}

	chunk := (len(data) + actual - 1) / actual
	partials, err := group.Spawn(actual, func(id int) int64 {
		start := id * chunk
		if start >= len(data) {
			return 0
		}
		return sumSlice(data[start:min(start+chunk, len(data))])
	}, group.WithPinnedThreads(pin))
	if err != nil {
		return 0, err
	}
	return sumSlice(partials), nil
}

func runVecSum(env *Env, length int) error {
	if err := checkLimit(length, maxElements); err != nil {
		return fmt.Errorf("vector length %d: %w", length, err)
	}
	vc := env.Config.Scenarios.VecSum
	h := env.harness()
	report.Title(env.Out, "Parallel vector sum (map-reduce)",
		fmt.Sprintf("Vector length: %d elements", length),
		runsLine(h),
	)

	data := make([]int64, length)
	for i := range data {
		data[i] = int64(i)
	}
	expected := seriesSum(int64(length) - 1)

	seq := harness.Measure(h, "Sequential", func(run harness.Run) int64 {
		env.say(run, "Sequential sum of %d elements", len(data))
		return sumSlice(data)
	})
	report.Runs(env.Out, seq)
	if err := harness.CheckAll("vecsum", "sequential sum", expected, seq.Outputs); err != nil {
		return err
	}

	tbl := report.NewTable("Performance", "Goroutines", "Time (ms)", "Speedup", "Efficiency", "Correct")
	var mismatch error
	for _, threads := range vc.Threads {
		var fail failure
		r := harness.Measure(h, fmt.Sprintf("%d goroutine(s)", threads), func(run harness.Run) int64 {
			env.say(run, "Parallel sum with %d goroutine(s) over %d elements", min(threads, max(length, 1)), length)
			s, err := parallelSum(data, threads, env.PinThreads)
			fail.record(err)
			return s
		})
		if fail.err != nil {
			return fail.err
		}
		report.Runs(env.Out, r)

		err := harness.CheckAll("vecsum", fmt.Sprintf("sum with %d goroutine(s)", threads), expected, r.Outputs)
		if mismatch == nil {
			mismatch = err
		}
		speedup := harness.Speedup(seq.MeanSeconds, r.MeanSeconds)
		tbl.AddRow(threads, report.Millis(r.MeanSeconds), speedup, harness.Efficiency(speedup, threads), err == nil)
	}

	tbl.Render(env.Out)
	env.printf("Expected sum (arithmetic series): %d\n", expected)
	return mismatch
}
