// Package pipeline wires producers, a job queue, a worker pool and an
// aggregator into one run, and offers sequential and goroutine-per-job
// executors with the same contract for comparison.
//
// The shutdown order of a pooled run is fixed:
//
//  1. every producer returns (errgroup join);
//  2. the pool delivers one termination signal per worker;
//  3. Join waits for the workers and closes the results channel;
//  4. the aggregator, running since the start, folds the last result.
//
// Signals are only sent after all producers have drained their share, so no
// worker can stop while jobs are still pending.
package pipeline
