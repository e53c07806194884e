// Package syncbench provides the bounded job queues and the fixed worker pool
// that the benchmark scenarios are built on.
//
// A pipeline run has four stages. Producers Submit jobs into a bounded Queue.
// A fixed set of workers Receive from the queue, apply a ProcessFunc, and
// publish one result per job. Once every producer has returned, Stop delivers
// exactly one termination signal per worker, and Join waits for the workers
// and closes the results channel so the aggregator can finish.
//
// # Queues
//
// Three disciplines implement the same Queue contract:
//
//   - LockedQueue: one mutex and two condition variables over a ring buffer.
//   - LockFreeQueue: a sequence-numbered ring with CAS on both ends, spinning
//     then parking when blocked. Capacity must be a power of two.
//   - ChanQueue: a buffered channel guarded so Send after Close is an error
//     instead of a panic.
//
// Send blocks while the queue is full and Receive blocks while it is empty and
// open. Receive reports ok == false only after Close and a complete drain.
//
// # Quick Start
//
//	q := syncbench.NewLockedQueue[syncbench.Message[int]](32)
//	pool, err := syncbench.NewPool(q, func(n int) int { return n * n },
//	    syncbench.WithNumWorkers(4),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	done := make(chan int)
//	go func() {
//	    sum := 0
//	    for r := range pool.Results() {
//	        sum += r
//	    }
//	    done <- sum
//	}()
//
//	for i := 0; i < 100; i++ {
//	    _ = pool.Submit(i)
//	}
//	_ = pool.Stop()
//	if err := pool.Join(); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(<-done)
//
// # Termination
//
// PoisonPill (default) enqueues one stop message per worker behind the last
// job. CloseQueue closes the queue instead. In both modes every worker
// observes exactly one signal; Stats().Signals equals the worker count after
// Join.
//
// # Error Handling
//
// A panicking job is recovered and produces no result. The worker keeps
// draining, and Join returns an *AggregateError wrapping one *PanicError per
// failed job:
//
//	if err := pool.Join(); err != nil {
//	    var pe *syncbench.PanicError
//	    if errors.As(err, &pe) {
//	        log.Printf("job %v panicked: %v", pe.Job, pe.Value)
//	    }
//	}
//
// # Thread Safety
//
// Submit is safe for concurrent use. Stop and Join must each be called once,
// in that order, after all submitters have returned.
package syncbench
