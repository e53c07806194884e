package group

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.ctx)
	assert.Equal(t, CollectAll, g.config.errorMode)
}

func TestSpawn_ResultsInSpawnOrder(t *testing.T) {
	got, err := Spawn(8, func(id int) int {
		// Later ids finish first.
		time.Sleep(time.Duration(8-id) * time.Millisecond)
		return id * 10
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 20, 30, 40, 50, 60, 70}, got)
}

func TestSpawn_PanicIsReported(t *testing.T) {
	got, err := Spawn(4, func(id int) string {
		if id == 2 {
			panic("thread failed")
		}
		return "ok"
	}, WithPinnedThreads(true))
	require.Error(t, err)

	var pe *PanicError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.ID)
	assert.Equal(t, "thread failed", pe.Value)
	assert.Equal(t, []string{"ok", "ok", "", "ok"}, got)
}

func TestCollectAllMode(t *testing.T) {
	g := New(WithErrorMode(CollectAll))

	for _, msg := range []string{"error 1", "error 2", "error 3"} {
		msg := msg
		g.Go(func(context.Context, int) error { return errors.New(msg) })
	}
	g.Go(func(context.Context, int) error { return nil })

	err := g.Wait()
	require.Error(t, err)
	for _, want := range []string{"error 1", "error 2", "error 3"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestFailFastMode(t *testing.T) {
	g := New(WithErrorMode(FailFast))
	boom := errors.New("boom")

	var cancelled atomic.Bool
	g.Go(func(context.Context, int) error { return boom })
	g.Go(func(ctx context.Context, _ int) error {
		select {
		case <-ctx.Done():
			cancelled.Store(true)
		case <-time.After(2 * time.Second):
		}
		return nil
	})

	assert.ErrorIs(t, g.Wait(), boom)
	assert.True(t, cancelled.Load())
}

func TestGo_IDsFollowSpawnOrder(t *testing.T) {
	g := New()
	ids := make([]int, 5)
	for i := 0; i < 5; i++ {
		g.Go(func(_ context.Context, id int) error {
			ids[id] = id + 1
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids)
}

func TestRun(t *testing.T) {
	var n atomic.Int32
	require.NoError(t, Run(16, func(int) { n.Add(1) }))
	assert.Equal(t, int32(16), n.Load())
}
