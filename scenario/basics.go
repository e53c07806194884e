package scenario

import (
	"fmt"
	"slices"

	"github.com/tahsin716/syncbench/config"
	"github.com/tahsin716/syncbench/group"
	"github.com/tahsin716/syncbench/harness"
	"github.com/tahsin716/syncbench/report"
)

const greeting = "Hello from a goroutine!"

func init() {
	register(Scenario{
		Name:  "hello",
		Short: "One goroutine returns a greeting; compared with a plain call",
		Run:   runHello,
	})
	register(Scenario{
		Name:        "indexed",
		Short:       "N goroutines each return their own index",
		SizeLabel:   "number of goroutines",
		DefaultSize: func(c *config.Config) int { return c.Scenarios.Indexed.DefaultThreads },
		Run:         runIndexed,
	})
}

func runHello(env *Env, _ int) error {
	h := env.harness()
	report.Title(env.Out, "Hello: one goroutine", runsLine(h))

	var fail failure
	par := harness.Measure(h, "Goroutine", func(run harness.Run) string {
		msgs, err := group.Spawn(1, func(int) string {
			env.say(run, "Goroutine: %s", greeting)
			return greeting
		}, group.WithPinnedThreads(env.PinThreads))
		fail.record(err)
		return msgs[0]
	})
	seq := harness.Measure(h, "Sequential", func(run harness.Run) string {
		env.say(run, "Sequential: %s", greeting)
		return greeting
	})
	if fail.err != nil {
		return fail.err
	}

	report.Runs(env.Out, par)
	report.Runs(env.Out, seq)

	if err := harness.CheckAll("hello", "goroutine message", greeting, par.Outputs); err != nil {
		return err
	}
	if err := harness.CheckAll("hello", "sequential message", greeting, seq.Outputs); err != nil {
		return err
	}
	env.printf("\nCorrect after warm-up: OK\n")
	return nil
}

func runIndexed(env *Env, n int) error {
	h := env.harness()
	report.Title(env.Out, "Indexed: N goroutines report their index", runsLine(h))

	var fail failure
	par := harness.Measure(h, "Goroutines", func(run harness.Run) []int {
		ids, err := group.Spawn(n, func(id int) int {
			env.say(run, "Goroutine %d", id)
			return id
		}, group.WithPinnedThreads(env.PinThreads))
		fail.record(err)
		return ids
	})
	seq := harness.Measure(h, "Sequential", func(run harness.Run) []int {
		ids := make([]int, n)
		for i := range ids {
			env.say(run, "Sequential %d", i)
			ids[i] = i
		}
		return ids
	})
	if fail.err != nil {
		return fail.err
	}

	report.Runs(env.Out, par)
	report.Runs(env.Out, seq)

	want := seq.Last()
	for i, got := range par.Outputs {
		if !slices.Equal(want, got) {
			return &harness.AssertionError{
				Scenario: "indexed",
				Check:    fmt.Sprintf("indices in creation order (run %d)", i+1),
				Expected: want,
				Obtained: got,
			}
		}
	}
	env.printf("\nCorrect after warm-up: OK\n")
	return nil
}
