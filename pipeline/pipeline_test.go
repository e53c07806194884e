package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tahsin716/syncbench"
)

const (
	blocks    = 400
	blockSize = 1000
)

var data = func() []int64 {
	d := make([]int64, blocks*blockSize)
	for i := range d {
		d[i] = int64((i*31+7)%1000 - 500)
	}
	return d
}()

func sumBlock(b int) int64 {
	var s int64
	for _, v := range data[b*blockSize : (b+1)*blockSize] {
		s += v
	}
	return s
}

func blockPlan() Plan[int, int64] {
	return Plan[int, int64]{
		Jobs:      blocks,
		Producers: 1,
		Source:    func(id JobID) int { return id.Global },
		Process:   sumBlock,
		Fold:      Sum[int64],
	}
}

// ============================================================================
// Producer Split Tests
// ============================================================================

func TestShareAndOffset(t *testing.T) {
	tests := []struct {
		n, producers int
		shares       []int
		offsets      []int
	}{
		{10, 1, []int{10}, []int{0}},
		{10, 3, []int{4, 3, 3}, []int{0, 4, 7}},
		{200, 2, []int{100, 100}, []int{0, 100}},
		{2, 4, []int{1, 1, 0, 0}, []int{0, 1, 2, 2}},
		{0, 2, []int{0, 0}, []int{0, 0}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n%d/p%d", tt.n, tt.producers), func(t *testing.T) {
			total := 0
			for p := 0; p < tt.producers; p++ {
				assert.Equal(t, tt.shares[p], Share(tt.n, tt.producers, p), "share of %d", p)
				assert.Equal(t, tt.offsets[p], Offset(tt.n, tt.producers, p), "offset of %d", p)
				total += Share(tt.n, tt.producers, p)
			}
			assert.Equal(t, tt.n, total)
		})
	}
}

func TestProduce_CoversEveryGlobalIndexOnce(t *testing.T) {
	var mu sync.Mutex
	var got []JobID

	err := Produce(103, 4, func(id JobID) JobID { return id }, func(id JobID) error {
		mu.Lock()
		got = append(got, id)
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 103)

	sort.Slice(got, func(i, j int) bool { return got[i].Global < got[j].Global })
	for i, id := range got {
		assert.Equal(t, i, id.Global)
		assert.Equal(t, Offset(103, 4, id.Producer)+id.Local, id.Global)
	}
}

func TestProduce_StopsOnSendError(t *testing.T) {
	boom := errors.New("boom")
	err := Produce(10, 2, func(id JobID) int { return id.Global }, func(int) error { return boom })
	assert.ErrorIs(t, err, boom)
}

// ============================================================================
// Aggregator Tests
// ============================================================================

func TestAggregate(t *testing.T) {
	ch := make(chan int, 4)
	ch <- 1
	ch <- 2
	ch <- 3
	close(ch)

	agg := Aggregate(ch, 0, Sum[int], 3)
	assert.Equal(t, 6, agg.Value)
	assert.Equal(t, 3, agg.Received)
	assert.True(t, agg.Complete)

	short := make(chan int)
	close(short)
	agg = Aggregate(short, 0, Sum[int], 1)
	assert.False(t, agg.Complete)
}

// ============================================================================
// Executor Tests
// ============================================================================

func TestExecutors_BlockSumMatchesOracle(t *testing.T) {
	require.Equal(t, int64(-500), sumBlock(0))
	const want = int64(-500 * blocks)

	executors := []Executor[int, int64]{
		Sequential[int, int64]{},
		PerJob[int, int64]{},
	}
	for _, kind := range []syncbench.QueueKind{syncbench.Locked, syncbench.LockFree, syncbench.Channel} {
		for _, w := range []int{2, 4, 8} {
			executors = append(executors, Pooled[int, int64]{
				Workers:     w,
				Capacity:    64,
				Queue:       kind,
				Termination: syncbench.PoisonPill,
			})
		}
	}

	for _, ex := range executors {
		t.Run(ex.Name(), func(t *testing.T) {
			out, err := ex.Execute(blockPlan())
			require.NoError(t, err)
			assert.Equal(t, want, out.Value)
			assert.Equal(t, blocks, out.Produced)
			assert.Equal(t, blocks, out.Consumed)
			assert.True(t, out.Complete)
		})
	}
}

func TestPooled_ProducedEqualsConsumed(t *testing.T) {
	for _, term := range []syncbench.Termination{syncbench.PoisonPill, syncbench.CloseQueue} {
		for _, w := range []int{1, 2, 4} {
			t.Run(fmt.Sprintf("%s/w%d", term, w), func(t *testing.T) {
				ex := Pooled[int, int]{
					Workers:     w,
					Capacity:    32,
					Queue:       syncbench.LockFree,
					Termination: term,
				}
				out, err := ex.Execute(Plan[int, int]{
					Jobs:      200,
					Producers: 2,
					Source:    func(id JobID) int { return id.Producer*10000 + id.Local },
					Process: func(n int) int {
						time.Sleep(20 * time.Microsecond)
						return n
					},
					Fold: Sum[int],
				})
				require.NoError(t, err)

				// 100 items per producer: sum(0..99) + sum(10000..10099).
				assert.Equal(t, 4950+1000000+4950, out.Value)
				assert.Equal(t, 200, out.Produced)
				assert.Equal(t, 200, out.Consumed)
				assert.Equal(t, w, out.Signals)
				require.NotNil(t, out.Pool)
				assert.LessOrEqual(t, out.Pool.QueueHighWater, 32)
			})
		}
	}
}

func TestPooled_RepeatedRunsStayExact(t *testing.T) {
	ex := Pooled[int, int64]{Workers: 8, Capacity: 4, Queue: syncbench.Locked, Termination: syncbench.CloseQueue}
	for i := 0; i < 20; i++ {
		out, err := ex.Execute(blockPlan())
		require.NoError(t, err)
		require.Equal(t, int64(-500*blocks), out.Value, "run %d", i)
		require.Equal(t, 8, out.Signals, "run %d", i)
	}
}

func TestExecutors_PanickingJobIsReported(t *testing.T) {
	plan := Plan[int, int]{
		Jobs:      20,
		Producers: 1,
		Source:    func(id JobID) int { return id.Global },
		Process: func(n int) int {
			if n == 7 {
				panic("job 7")
			}
			return n
		},
		Fold: Sum[int],
	}

	for _, ex := range []Executor[int, int]{
		PerJob[int, int]{},
		Pooled[int, int]{Workers: 3, Capacity: 8, Queue: syncbench.Channel},
	} {
		t.Run(ex.Name(), func(t *testing.T) {
			out, err := ex.Execute(plan)
			require.Error(t, err)

			var pe *syncbench.PanicError
			assert.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, 19, out.Consumed)
			assert.False(t, out.Complete)
		})
	}
}

func TestExecutors_RejectInvalidPlans(t *testing.T) {
	bad := blockPlan()
	bad.Producers = 0
	_, err := Sequential[int, int64]{}.Execute(bad)
	assert.Error(t, err)

	_, err = Pooled[int, int64]{Workers: 0, Capacity: 8}.Execute(blockPlan())
	assert.Error(t, err)

	_, err = Pooled[int, int64]{Workers: 2, Capacity: 6, Queue: syncbench.LockFree}.Execute(blockPlan())
	assert.True(t, syncbench.IsInvalidConfig(err))
}
