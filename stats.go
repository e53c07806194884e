package syncbench

import "time"

// Stats contains statistics about one pool's lifetime.
// All counters are snapshots taken at the time Stats() is called and may be
// slightly inconsistent while workers are still running.
//
// Example:
//
//	_ = pool.Join()
//	stats := pool.Stats()
//	fmt.Printf("processed %d of %d, %d signals\n",
//	    stats.Processed, stats.Submitted, stats.Signals)
type Stats struct {
	// Submitted is the number of jobs accepted by Submit.
	Submitted uint64

	// Processed is the number of jobs whose process function returned.
	// Each of them published exactly one result.
	Processed uint64

	// Failed is the number of jobs whose process function panicked.
	// Failed jobs publish no result.
	Failed uint64

	// Signals is the number of termination signals observed by workers.
	// After Join it equals NumWorkers.
	Signals uint64

	// NumWorkers is the fixed worker count.
	NumWorkers int

	// QueueLen is the number of messages waiting in the job queue.
	// Stop messages count as queued messages.
	QueueLen int

	// QueueCapacity is the job queue bound.
	QueueCapacity int

	// QueueHighWater is the largest queue length observed, or zero if the
	// queue does not track it. It never exceeds QueueCapacity.
	QueueHighWater int

	// LatencyAvg is the average time spent inside the process function.
	// Zero if no job has completed.
	LatencyAvg time.Duration

	// LatencyMax is the longest single process call.
	LatencyMax time.Duration

	// WorkerStats has one entry per worker, indexed by worker ID.
	WorkerStats []WorkerStats
}

// WorkerStats contains statistics for an individual worker goroutine.
// Each worker maintains its own counters to avoid contention.
type WorkerStats struct {
	// ID is the worker's index in [0, NumWorkers).
	ID int

	// Processed is the number of jobs this worker completed.
	Processed uint64

	// Failed is the number of jobs that panicked on this worker.
	Failed uint64

	// Signals is the number of termination signals this worker observed.
	// A worker stops at its first signal, so this is 0 or 1.
	Signals uint64
}
