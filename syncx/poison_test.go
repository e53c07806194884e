package syncx

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutex_Do(t *testing.T) {
	m := NewMutex(0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				assert.NoError(t, m.Do(func(v *int) { *v++ }))
			}
		}()
	}
	wg.Wait()

	var got int
	require.NoError(t, m.Do(func(v *int) { got = *v }))
	assert.Equal(t, 8000, got)
}

func TestMutex_PoisonedAfterPanic(t *testing.T) {
	m := NewMutex([]int{1, 2, 3})

	assert.PanicsWithValue(t, "holder failed", func() {
		_ = m.Do(func(v *[]int) {
			*v = (*v)[:1]
			panic("holder failed")
		})
	})
	assert.True(t, m.Poisoned())

	ran := false
	err := m.Do(func(*[]int) { ran = true })
	require.Error(t, err)
	assert.False(t, ran, "fn must not run on a poisoned mutex")
	assert.True(t, errors.Is(err, ErrPriorHolderFailed))

	var pe *PoisonError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "holder failed", pe.Value)
}

func TestMutex_Recover(t *testing.T) {
	m := NewMutex(10)
	assert.Nil(t, m.Recover(nil))

	assert.Panics(t, func() {
		_ = m.Do(func(v *int) {
			*v = -1
			panic("bad")
		})
	})

	cause := m.Recover(func(v *int) { *v = 10 })
	assert.Equal(t, "bad", cause)
	assert.False(t, m.Poisoned())

	var got int
	require.NoError(t, m.Do(func(v *int) { got = *v }))
	assert.Equal(t, 10, got)
}

func TestRWMutex_PoisonFromReader(t *testing.T) {
	m := NewRWMutex(map[string]int{"a": 1})

	assert.Panics(t, func() {
		_ = m.Read(func(v *map[string]int) {
			panic("reader failed")
		})
	})

	assert.ErrorIs(t, m.Read(func(*map[string]int) {}), ErrPriorHolderFailed)
	assert.ErrorIs(t, m.Write(func(*map[string]int) {}), ErrPriorHolderFailed)

	m.Recover(nil)
	assert.NoError(t, m.Write(func(v *map[string]int) { (*v)["b"] = 2 }))
}

func TestRWMutex_ConcurrentReadersAndWriters(t *testing.T) {
	m := NewRWMutex(make([]int64, 16))

	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				assert.NoError(t, m.Write(func(v *[]int64) { (*v)[(w+i)%16]++ }))
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				assert.NoError(t, m.Read(func(v *[]int64) { _ = (*v)[i%16] }))
			}
		}()
	}
	wg.Wait()

	var sum int64
	require.NoError(t, m.Read(func(v *[]int64) {
		for _, x := range *v {
			sum += x
		}
	}))
	assert.Equal(t, int64(1000), sum)
}
