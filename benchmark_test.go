package syncbench

import (
	"runtime"
	"sync"
	"testing"
)

// ============================================================================
// Queue Throughput
// ============================================================================

func benchmarkQueue(b *testing.B, kind QueueKind) {
	q, err := NewQueue[int](kind, 1024)
	if err != nil {
		b.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		for {
			if _, ok := q.Receive(); !ok {
				close(done)
				return
			}
		}
	}()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_ = q.Send(i)
			i++
		}
	})
	q.Close()
	<-done

	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "items/sec")
}

func BenchmarkQueue_Locked(b *testing.B)   { benchmarkQueue(b, Locked) }
func BenchmarkQueue_LockFree(b *testing.B) { benchmarkQueue(b, LockFree) }
func BenchmarkQueue_Channel(b *testing.B)  { benchmarkQueue(b, Channel) }

// ============================================================================
// Pool vs Goroutine-per-job
// ============================================================================

func cpuBound(n int) int {
	sum := 0
	for i := 0; i < 1000; i++ {
		sum += (n*31 + i) % 1000
	}
	return sum
}

func BenchmarkComparison_Pool_CPUBound(b *testing.B) {
	q := NewLockFreeQueue[Message[int]](1024)
	pool, _ := NewPool(q, cpuBound, WithNumWorkers(runtime.NumCPU()))

	var total int
	done := make(chan struct{})
	go func() {
		for r := range pool.Results() {
			total += r
		}
		close(done)
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = pool.Submit(i)
	}
	_ = pool.Stop()
	_ = pool.Join()
	<-done

	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "tasks/sec")
}

func BenchmarkComparison_Goroutines_CPUBound(b *testing.B) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var total int

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			r := cpuBound(n)
			mu.Lock()
			total += r
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "tasks/sec")
}
