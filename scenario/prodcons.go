package scenario

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tahsin716/syncbench/config"
	"github.com/tahsin716/syncbench/harness"
	"github.com/tahsin716/syncbench/pipeline"
	"github.com/tahsin716/syncbench/report"
)

// itemStride separates the item ranges of different producers.
const itemStride = 10000

func init() {
	register(Scenario{
		Name:        "prodcons",
		Short:       "Producers and a worker pool around a bounded blocking queue",
		SizeLabel:   "number of items",
		DefaultSize: func(c *config.Config) int { return c.Scenarios.ProdCons.DefaultItems },
		Run:         runProdCons,
	})
}

// itemTotal is the sum of every item the producers emit.
func itemTotal(items, producers int) int64 {
	var total int64
	for p := 0; p < producers; p++ {
		share := int64(pipeline.Share(items, producers, p))
		total += share*int64(p*itemStride) + share*(share-1)/2
	}
	return total
}

func runProdCons(env *Env, items int) error {
	pc := env.Config.Scenarios.ProdCons
	h := env.harness()
	report.Title(env.Out, "Producer-consumer with a bounded blocking queue",
		fmt.Sprintf("Items: %d, producers: %d, workers: %d, capacity: %d, queue: %s, termination: %s",
			items, pc.Producers, pc.Workers, pc.Capacity, env.Queue, env.Termination),
		runsLine(h),
	)
	env.printf("\nWarm-up run log:\n")

	exec := pipeline.Pooled[int, int64]{
		Workers:     pc.Workers,
		Capacity:    pc.Capacity,
		Queue:       env.Queue,
		Termination: env.Termination,
		PinThreads:  env.PinThreads,
		Observer:    env.poolObserver(),
		Logger:      env.Logger,
	}

	var fail failure
	r := harness.Measure(h, "Blocking queue", func(run harness.Run) pipeline.Outcome[int64] {
		var consumed atomic.Int64
		out, err := exec.Execute(pipeline.Plan[int, int64]{
			Jobs:      items,
			Producers: pc.Producers,
			Source: func(id pipeline.JobID) int {
				item := id.Producer*itemStride + id.Local
				if id.Local < 5 {
					env.say(run, "Producer %d sent item %d", id.Producer, item)
				}
				return item
			},
			Process: func(item int) int64 {
				if n := consumed.Add(1); n <= 5 {
					env.say(run, "Worker processed item %d", item)
				}
				time.Sleep(pc.ItemWork)
				return int64(item)
			},
			Fold: pipeline.Sum[int64],
		})
		fail.record(err)
		env.say(run, "Workers observed %d termination signal(s)", out.Signals)
		return out
	})
	if fail.err != nil {
		return fail.err
	}

	report.Runs(env.Out, r)

	last := r.Last()
	env.printf("\nSummary of the last measured run:\n")
	env.printf("  Produced: %d (expected %d)\n", last.Produced, items)
	env.printf("  Consumed: %d (expected %d)\n", last.Consumed, items)
	env.printf("  Termination signals: %d (expected %d)\n", last.Signals, pc.Workers)
	if last.Pool != nil {
		env.printf("  Queue high-water mark: %d of %d\n", last.Pool.QueueHighWater, last.Pool.QueueCapacity)
	}

	if err := verifyProdCons(r.Outputs, items, pc.Producers, pc.Workers); err != nil {
		return err
	}
	env.printf("Conclusion: one signal per worker after the producers drain ends every worker without deadlock.\n")
	return nil
}

// verifyProdCons checks every run, warm-up included, against the oracle.
func verifyProdCons(outputs []pipeline.Outcome[int64], items, producers, workers int) error {
	want := itemTotal(items, producers)
	for i, out := range outputs {
		label := func(what string) string { return fmt.Sprintf("%s (run %d)", what, i+1) }
		for _, err := range []error{
			harness.Check("prodcons", label("produced"), items, out.Produced),
			harness.Check("prodcons", label("consumed"), items, out.Consumed),
			harness.Check("prodcons", label("termination signals"), workers, out.Signals),
			harness.Check("prodcons", label("item sum"), want, out.Value),
		} {
			if err != nil {
				return err
			}
		}
	}
	return nil
}
