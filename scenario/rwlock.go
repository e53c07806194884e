package scenario

import (
	"fmt"

	"github.com/tahsin716/syncbench/config"
	"github.com/tahsin716/syncbench/group"
	"github.com/tahsin716/syncbench/harness"
	"github.com/tahsin716/syncbench/report"
	"github.com/tahsin716/syncbench/syncx"
)

// keysPerRead is how many consecutive keys a reader sums per lock hold.
const keysPerRead = 4

func init() {
	register(Scenario{
		Name:        "rwlock",
		Short:       "Readers and writers over a shared map: mutex vs reader/writer lock",
		SizeLabel:   "number of readers",
		DefaultSize: func(c *config.Config) int { return c.Scenarios.RWLock.DefaultReaders },
		Run:         runRWLock,
	})
}

type accounts map[int]int64

func initialAccounts(keys int) accounts {
	db := make(accounts, keys)
	for k := 0; k < keys; k++ {
		db[k] = int64(k)*3 - 50
	}
	return db
}

func (db accounts) sum() int64 {
	var s int64
	for _, v := range db {
		s += v
	}
	return s
}

func writerDelta(writer int) int64 { return int64(writer) + 1 }

// expectedBalance is the analytic final sum: the initial balances plus
// every writer's delta times its write count.
func expectedBalance(rc config.RWLock) int64 {
	total := initialAccounts(rc.Keys).sum()
	for w := 0; w < rc.Writers; w++ {
		total += writerDelta(w) * int64(rc.WritesPerWriter)
	}
	return total
}

type rwStats struct {
	FinalSum int64
	Reads    int
	Writes   int
	ReadAcc  int64
}

// access is the locking discipline under test.
type access struct {
	name  string
	read  func(fn func(*accounts)) error
	write func(fn func(*accounts)) error
	final func() (int64, error)

	// Per-discipline key strides.
	readerStride, writerStride int
}

func exclusiveAccess(keys int) access {
	m := syncx.NewMutex(initialAccounts(keys))
	return access{
		name:  "Mutex",
		read:  m.Do,
		write: m.Do,
		final: func() (s int64, err error) {
			err = m.Do(func(db *accounts) { s = db.sum() })
			return s, err
		},
		readerStride: 7,
		writerStride: 11,
	}
}

func sharedAccess(keys int) access {
	m := syncx.NewRWMutex(initialAccounts(keys))
	return access{
		name:  "RWMutex",
		read:  m.Read,
		write: m.Write,
		final: func() (s int64, err error) {
			err = m.Read(func(db *accounts) { s = db.sum() })
			return s, err
		},
		readerStride: 13,
		writerStride: 17,
	}
}

type rwPart struct {
	reads, writes int
	readAcc       int64
	err           error
}

func readersWriters(env *Env, run harness.Run, rc config.RWLock, readers int, a access) (rwStats, error) {
	start := syncx.NewBarrier(readers + rc.Writers)

	reader := func(r int) rwPart {
		var p rwPart
		for iter := 0; iter < rc.ReadsPerReader; iter++ {
			base := (r*a.readerStride + iter) % rc.Keys
			err := a.read(func(db *accounts) {
				for off := 0; off < keysPerRead; off++ {
					p.readAcc += (*db)[(base+off)%rc.Keys]
				}
			})
			if err != nil {
				p.err = err
				return p
			}
			p.reads++
			if r == 0 && iter < 2 {
				env.say(run, "%s reader %d read base %d", a.name, r, base)
			}
		}
		return p
	}

	writer := func(w int) rwPart {
		var p rwPart
		for iter := 0; iter < rc.WritesPerWriter; iter++ {
			key := (w*a.writerStride + iter) % rc.Keys
			if err := a.write(func(db *accounts) { (*db)[key] += writerDelta(w) }); err != nil {
				p.err = err
				return p
			}
			p.writes++
			if iter < 2 {
				env.say(run, "%s writer %d updated key %d", a.name, w, key)
			}
		}
		return p
	}

	parts, err := group.Spawn(readers+rc.Writers, func(id int) rwPart {
		start.Wait()
		if id < readers {
			return reader(id)
		}
		return writer(id - readers)
	}, group.WithPinnedThreads(env.PinThreads))
	if err != nil {
		return rwStats{}, err
	}

	var s rwStats
	for _, p := range parts {
		if p.err != nil {
			return s, p.err
		}
		s.Reads += p.reads
		s.Writes += p.writes
		s.ReadAcc += p.readAcc
	}
	s.FinalSum, err = a.final()
	return s, err
}

func runRWLock(env *Env, readers int) error {
	rc := env.Config.Scenarios.RWLock
	h := env.harness()
	report.Title(env.Out, "Readers and writers",
		fmt.Sprintf("Config: %d readers, %d writers, %d reads/reader, %d writes/writer, %d keys",
			readers, rc.Writers, rc.ReadsPerReader, rc.WritesPerWriter, rc.Keys),
		runsLine(h),
	)
	expected := expectedBalance(rc)

	measure := func(build func(int) access) (harness.Report[rwStats], error) {
		name := build(rc.Keys).name
		var fail failure
		r := harness.Measure(h, name, func(run harness.Run) rwStats {
			s, err := readersWriters(env, run, rc, readers, build(rc.Keys))
			fail.record(err)
			return s
		})
		if fail.err != nil {
			return r, fmt.Errorf("%s: %w", name, fail.err)
		}
		report.Runs(env.Out, r)

		for i, s := range r.Outputs {
			if err := harness.Check("rwlock", fmt.Sprintf("%s final sum (run %d)", name, i+1), expected, s.FinalSum); err != nil {
				return r, err
			}
			if err := harness.Check("rwlock", fmt.Sprintf("%s read count (run %d)", name, i+1), readers*rc.ReadsPerReader, s.Reads); err != nil {
				return r, err
			}
		}
		return r, nil
	}

	mutex, err := measure(exclusiveAccess)
	if err != nil {
		return err
	}
	rw, err := measure(sharedAccess)
	if err != nil {
		return err
	}

	readAcc := func(r harness.Report[rwStats]) int64 {
		var acc int64
		for _, s := range r.Measured() {
			acc += s.ReadAcc
		}
		return acc
	}
	env.printf("\nRead accumulator: mutex = %d, rwmutex = %d\n", readAcc(mutex), readAcc(rw))

	tbl := report.NewTable("Performance (means without warm-up)", "Approach", "Time (ms)", "Speedup vs mutex", "Final sum")
	tbl.AddRow("Mutex", report.Millis(mutex.MeanSeconds), 1.0, mutex.Last().FinalSum)
	tbl.AddRow("RWMutex", report.Millis(rw.MeanSeconds), harness.Speedup(mutex.MeanSeconds, rw.MeanSeconds), rw.Last().FinalSum)
	tbl.Render(env.Out)

	env.printf("A reader/writer lock lets readers proceed together while no writer holds it; " +
		"an exclusive mutex serializes every read.\n")
	return nil
}
