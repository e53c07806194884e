// Package syncx holds synchronization primitives used by the benchmark
// scenarios: lock wrappers that remember a panicking holder, and a reusable
// barrier that elects a leader per generation.
package syncx
