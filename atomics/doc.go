// Package atomics provides the small concurrency primitives the collector
// is built on: a swappable boolean for collection-request flags, a Once
// for idempotent teardown, a Barrier for permanent state changes like
// worker-pool shutdown, a Counter for tracking outstanding allocation
// frames, and a drainable WaitGroup for mark-work accounting.
package atomics
