package scenario

import (
	"fmt"
	"math"

	"github.com/tahsin716/syncbench/config"
	"github.com/tahsin716/syncbench/group"
	"github.com/tahsin716/syncbench/harness"
	"github.com/tahsin716/syncbench/prng"
	"github.com/tahsin716/syncbench/report"
)

func init() {
	register(Scenario{
		Name:        "montecarlo",
		Short:       "Monte Carlo estimate of pi with per-goroutine xorshift streams",
		SizeLabel:   "samples per goroutine",
		DefaultSize: func(c *config.Config) int { return c.Scenarios.MonteCarlo.DefaultSamples },
		Run:         runMonteCarlo,
	})
}

type piEstimate struct {
	Samples int
	Inside  int
	Pi      float64
}

func (e piEstimate) add(o piEstimate) piEstimate {
	e.Samples += o.Samples
	e.Inside += o.Inside
	e.Pi = 4 * float64(e.Inside) / float64(e.Samples)
	return e
}

// sampleCircle draws samples points in the unit square and counts those in
// the inscribed circle of radius 0.5. With narrate set it prints the first
// few points.
func sampleCircle(env *Env, narrate bool, samples int, rng *prng.XorShift64) piEstimate {
	inside := 0
	for i := 0; i < samples; i++ {
		x, y := rng.Float64(), rng.Float64()
		dx, dy := x-0.5, y-0.5
		hit := dx*dx+dy*dy <= 0.25
		if hit {
			inside++
		}
		if narrate && i < 5 {
			env.printf("  sample %d -> (%.4f, %.4f) inside = %t\n", i, x, y, hit)
		}
	}
	return piEstimate{}.add(piEstimate{Samples: samples, Inside: inside})
}

func estimatePi(env *Env, run harness.Run, samples, threads int) (piEstimate, error) {
	env.say(run, "Estimating pi with %d goroutine(s), %d samples each", threads, samples)
	if threads <= 1 {
		return sampleCircle(env, run.ShouldLog(), samples, prng.ForWorker(0)), nil
	}

	parts, err := group.Spawn(threads, func(id int) piEstimate {
		return sampleCircle(env, run.ShouldLog() && id == 0, samples, prng.ForWorker(uint64(id)))
	}, group.WithPinnedThreads(env.PinThreads))
	if err != nil {
		return piEstimate{}, err
	}

	var total piEstimate
	for _, p := range parts {
		total = total.add(p)
	}
	return total, nil
}

func runMonteCarlo(env *Env, samples int) error {
	mc := env.Config.Scenarios.MonteCarlo
	h := env.harness()
	report.Title(env.Out, "Estimating pi (Monte Carlo)",
		fmt.Sprintf("Samples per goroutine: %d, multipliers: %v, goroutines: %v", samples, mc.Multipliers, mc.Threads),
		runsLine(h),
	)

	tbl := report.NewTable("Results", "Goroutines", "K per goroutine", "Time (ms)", "pi estimate", "|error|", "Speedup", "Efficiency")
	for _, mult := range mc.Multipliers {
		k := samples * mult
		env.printf("\n=== K = %d samples per goroutine ===\n", k)

		var baseline float64
		for i, threads := range mc.Threads {
			var fail failure
			r := harness.Measure(h, fmt.Sprintf("%d goroutine(s)", threads), func(run harness.Run) piEstimate {
				est, err := estimatePi(env, run, k, threads)
				fail.record(err)
				return est
			})
			if fail.err != nil {
				return fail.err
			}
			report.Runs(env.Out, r)

			for j, est := range r.Outputs {
				if err := harness.Check("montecarlo",
					fmt.Sprintf("samples drawn with %d goroutine(s) (run %d)", threads, j+1),
					k*max(threads, 1), est.Samples); err != nil {
					return err
				}
			}

			if i == 0 {
				baseline = r.MeanSeconds
			}
			last := r.Last()
			speedup := harness.Speedup(baseline, r.MeanSeconds)
			tbl.AddRow(threads, k, report.Millis(r.MeanSeconds), fmt.Sprintf("%.6f", last.Pi),
				fmt.Sprintf("%.6f", math.Abs(last.Pi-math.Pi)), speedup, harness.Efficiency(speedup, threads))
		}
	}

	tbl.Render(env.Out)
	env.printf("Speedup is relative to the first goroutine count of the same K.\n")
	return nil
}
