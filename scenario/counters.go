package scenario

import (
	"fmt"

	"github.com/tahsin716/syncbench/config"
	"github.com/tahsin716/syncbench/counter"
	"github.com/tahsin716/syncbench/harness"
	"github.com/tahsin716/syncbench/report"
)

func init() {
	register(Scenario{
		Name:        "race",
		Short:       "Unsynchronized shared counter; reports lost updates",
		SizeLabel:   "number of goroutines",
		DefaultSize: func(c *config.Config) int { return c.Scenarios.Race.DefaultThreads },
		Run:         runRace,
	})
	register(Scenario{
		Name:        "mutex",
		Short:       "Fixes the race with a lock per update",
		SizeLabel:   "number of goroutines",
		DefaultSize: func(c *config.Config) int { return c.Scenarios.Mutex.DefaultThreads },
		Run:         runMutex,
	})
	register(Scenario{
		Name:        "granularity",
		Short:       "Lock per update, per batch, and once per goroutine",
		SizeLabel:   "number of goroutines",
		DefaultSize: func(c *config.Config) int { return c.Scenarios.Granularity.DefaultThreads },
		Run:         runGranularity,
	})
	register(Scenario{
		Name:        "atomic",
		Short:       "Atomic fetch-and-add against locking and no synchronization",
		SizeLabel:   "number of goroutines",
		DefaultSize: func(c *config.Config) int { return c.Scenarios.Atomic.DefaultThreads },
		Run:         runAtomic,
	})
}

// counterRun is one timed strategy.
type counterRun struct {
	strategy counter.Strategy
	report   harness.Report[uint64]
}

// measureCounters times each strategy in turn and prints its runs.
func measureCounters(env *Env, h *harness.Harness, threads, iterations int, strategies ...counter.Strategy) ([]counterRun, error) {
	out := make([]counterRun, len(strategies))
	for i, s := range strategies {
		var fail failure
		r := harness.Measure(h, s.Name(), func(run harness.Run) uint64 {
			v, err := s.Run(threads, iterations)
			fail.record(err)
			env.say(run, "%s: counter = %d", s.Name(), v)
			return v
		})
		if fail.err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name(), fail.err)
		}
		out[i] = counterRun{strategy: s, report: r}
	}
	for _, cr := range out {
		report.Runs(env.Out, cr.report)
	}
	return out, nil
}

func counterTable(runs []counterRun) *report.Table {
	tbl := report.NewTable("Mean times after warm-up", "Strategy", "Time (ms)", "Final value")
	for _, cr := range runs {
		tbl.AddRow(cr.strategy.Name(), report.Millis(cr.report.MeanSeconds), cr.report.Last())
	}
	return tbl
}

// checkExact asserts that every measured run of the given strategies
// reached expected.
func checkExact(scenario string, expected uint64, runs ...counterRun) error {
	for _, cr := range runs {
		if err := harness.CheckAll(scenario, cr.strategy.Name()+" total", expected, cr.report.Outputs); err != nil {
			return err
		}
	}
	return nil
}

func counterHeader(env *Env, h *harness.Harness, title string, threads, iterations int) uint64 {
	expected := uint64(threads) * uint64(iterations)
	report.Title(env.Out, title,
		fmt.Sprintf("%d goroutines x %d increments; expected value = %d", threads, iterations, expected),
		runsLine(h),
	)
	return expected
}

func runRace(env *Env, threads int) error {
	cc := env.Config.Scenarios.Race
	h := env.harness()
	expected := counterHeader(env, h, "Race condition in practice", threads, cc.Iterations)

	runs, err := measureCounters(env, h, threads, cc.Iterations,
		counter.Unsynchronized{Pin: env.PinThreads},
		counter.Sequential{},
	)
	if err != nil {
		return err
	}
	racy, seq := runs[0], runs[1]

	loss := counter.ComputeLoss(expected, racy.report.Last())
	env.printf("\nExpected value: %d\n", loss.Expected)
	env.printf("Obtained (last unsynchronized run): %d\n", loss.Obtained)
	env.printf("Lost updates: %d (%.2f%%)\n", loss.Lost, loss.Percent)
	env.printf("Sequential confirms: %d\n", seq.report.Last())

	return checkExact("race", expected, seq)
}

func runMutex(env *Env, threads int) error {
	cc := env.Config.Scenarios.Mutex
	h := env.harness()
	expected := counterHeader(env, h, "Mutual exclusion", threads, cc.Iterations)

	runs, err := measureCounters(env, h, threads, cc.Iterations,
		counter.Unsynchronized{Pin: env.PinThreads},
		counter.Locked{Batch: 1, Pin: env.PinThreads},
		counter.Sequential{},
	)
	if err != nil {
		return err
	}
	racy, locked := runs[0], runs[1]

	counterTable(runs).Render(env.Out)
	env.printf("\nExpected value: %d\n", expected)
	env.printf("Lock cost: %.2f%% over the unsynchronized version\n",
		counter.PercentChange(racy.report.MeanSeconds, locked.report.MeanSeconds))

	return checkExact("mutex", expected, runs[1:]...)
}

func runGranularity(env *Env, threads int) error {
	cc := env.Config.Scenarios.Granularity
	h := env.harness()
	expected := counterHeader(env, h, "Lock granularity", threads, cc.Iterations)

	perUpdate, batched, once := counter.PerUpdate(), counter.Batched(cc.Batch), counter.Once()
	perUpdate.Pin, batched.Pin, once.Pin = env.PinThreads, env.PinThreads, env.PinThreads

	runs, err := measureCounters(env, h, threads, cc.Iterations, perUpdate, batched, once, counter.Sequential{})
	if err != nil {
		return err
	}

	counterTable(runs).Render(env.Out)
	printComparisons(env, runs[:3])

	return checkExact("granularity", expected, runs...)
}

func runAtomic(env *Env, threads int) error {
	cc := env.Config.Scenarios.Atomic
	h := env.harness()
	expected := counterHeader(env, h, "Atomic counter", threads, cc.Iterations)

	runs, err := measureCounters(env, h, threads, cc.Iterations,
		counter.Unsynchronized{Pin: env.PinThreads},
		counter.Locked{Batch: 1, Pin: env.PinThreads},
		counter.Atomic{Pin: env.PinThreads},
		counter.Sequential{},
	)
	if err != nil {
		return err
	}

	counterTable(runs).Render(env.Out)
	printComparisons(env, runs[:3])
	env.printf("Unsynchronized obtained %d of %d\n", runs[0].report.Last(), expected)

	return checkExact("atomic", expected, runs[1:]...)
}

func printComparisons(env *Env, runs []counterRun) {
	names := make([]string, len(runs))
	means := make([]float64, len(runs))
	for i, cr := range runs {
		names[i] = cr.strategy.Name()
		means[i] = cr.report.MeanSeconds
	}
	env.printf("\n")
	for _, c := range counter.Compare(names, means) {
		env.printf("%s -> %s: %+.2f%%\n", c.From, c.To, c.Percent)
	}
}
