package scenario

import (
	"fmt"

	"github.com/tahsin716/syncbench/config"
	"github.com/tahsin716/syncbench/harness"
	"github.com/tahsin716/syncbench/pipeline"
	"github.com/tahsin716/syncbench/report"
)

func init() {
	register(Scenario{
		Name:        "threadpool",
		Short:       "Block sums: sequential, goroutine per task, and fixed pools",
		SizeLabel:   "number of tasks",
		DefaultSize: func(c *config.Config) int { return c.Scenarios.ThreadPool.DefaultTasks },
		MaxSize:     maxTasks,
		Run:         runThreadPool,
	})
}

// blockData is the shared read-only dataset: (i*31+7)%1000 - 500.
func blockData(n int) []int64 {
	data := make([]int64, n)
	for i := range data {
		data[i] = int64((i*31+7)%1000 - 500)
	}
	return data
}

// maxTasks keeps tasks*BlockSize within maxElements.
func maxTasks(c *config.Config) int {
	return maxElements / c.Scenarios.ThreadPool.BlockSize
}

func runThreadPool(env *Env, tasks int) error {
	if err := checkLimit(tasks, maxTasks(env.Config)); err != nil {
		return fmt.Errorf("%d tasks: %w", tasks, err)
	}
	tc := env.Config.Scenarios.ThreadPool
	h := env.harness()
	report.Title(env.Out, "Fixed worker pool",
		fmt.Sprintf("Tasks: %d blocks of %d elements, queue: %s, termination: %s",
			tasks, tc.BlockSize, env.Queue, env.Termination),
		runsLine(h),
	)

	data := blockData(tasks * tc.BlockSize)
	plan := func(run harness.Run) pipeline.Plan[int, int64] {
		return pipeline.Plan[int, int64]{
			Jobs:      tasks,
			Producers: 1,
			Source:    func(id pipeline.JobID) int { return id.Global },
			Process: func(task int) int64 {
				start := task * tc.BlockSize
				if task < 3 {
					env.say(run, "Block [%d..%d)", start, start+tc.BlockSize)
				}
				return sumSlice(data[start : start+tc.BlockSize])
			},
			Fold: pipeline.Sum[int64],
		}
	}

	measure := func(ex pipeline.Executor[int, int64]) (harness.Report[pipeline.Outcome[int64]], error) {
		var fail failure
		r := harness.Measure(h, ex.Name(), func(run harness.Run) pipeline.Outcome[int64] {
			out, err := ex.Execute(plan(run))
			fail.record(err)
			return out
		})
		if fail.err != nil {
			return r, fmt.Errorf("%s: %w", ex.Name(), fail.err)
		}
		report.Runs(env.Out, r)
		return r, nil
	}

	seq, err := measure(pipeline.Sequential[int, int64]{})
	if err != nil {
		return err
	}
	baseline := seq.Last().Value

	verify := func(r harness.Report[pipeline.Outcome[int64]]) error {
		for i, out := range r.Outputs {
			label := fmt.Sprintf("%s (run %d)", r.Name, i+1)
			if err := harness.Check("threadpool", label+" complete", true, out.Complete); err != nil {
				return err
			}
			if err := harness.Check("threadpool", label+" total", baseline, out.Value); err != nil {
				return err
			}
		}
		return nil
	}

	perTask, err := measure(pipeline.PerJob[int, int64]{})
	if err != nil {
		return err
	}
	if err := verify(perTask); err != nil {
		return err
	}

	type poolRun struct {
		workers int
		mean    float64
	}
	var pools []poolRun
	for _, workers := range tc.PoolSizes {
		r, err := measure(pipeline.Pooled[int, int64]{
			Workers:     workers,
			Capacity:    tc.Capacity,
			Queue:       env.Queue,
			Termination: env.Termination,
			PinThreads:  env.PinThreads,
			Observer:    env.poolObserver(),
			Logger:      env.Logger,
		})
		if err != nil {
			return err
		}
		if err := verify(r); err != nil {
			return err
		}
		pools = append(pools, poolRun{workers: workers, mean: r.MeanSeconds})
	}

	tbl := report.NewTable("Performance (means without warm-up)",
		"Approach", "Workers", "Time (ms)", "Speedup vs per-task", "Speedup vs sequential")
	tbl.AddRow("Sequential", 1, report.Millis(seq.MeanSeconds),
		harness.Speedup(perTask.MeanSeconds, seq.MeanSeconds), 1.0)
	tbl.AddRow("Goroutine per task", tasks, report.Millis(perTask.MeanSeconds),
		1.0, harness.Speedup(seq.MeanSeconds, perTask.MeanSeconds))
	for _, p := range pools {
		tbl.AddRow("Fixed pool", p.workers, report.Millis(p.mean),
			harness.Speedup(perTask.MeanSeconds, p.mean), harness.Speedup(seq.MeanSeconds, p.mean))
	}
	tbl.Render(env.Out)

	best := -1
	for i, p := range pools {
		if p.mean < perTask.MeanSeconds && (best < 0 || p.mean < pools[best].mean) {
			best = i
		}
	}
	if best >= 0 {
		report.Note(env.Out, "a pool of %d worker(s) beat one goroutine per task, cutting %.2f%% of the time",
			pools[best].workers, (1-pools[best].mean/perTask.MeanSeconds)*100)
	} else {
		report.Note(env.Out, "with blocks this small, pool communication still costs more than spawning goroutines")
	}
	env.printf("Sequential total: %d\n", baseline)
	return nil
}
