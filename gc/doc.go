// Package gc implements a generational, partially-concurrent, tracing
// garbage collector intended to be embedded in a host runtime, such as an
// interpreter, that allocates managed objects and must reclaim the
// unreachable ones without long unpredictable pauses.
//
// The host allocates through per-scope Frames, accesses objects through
// typed handles (Box, Ref and the write-barriered Mut) and periodically
// calls State.Safepoint() so pending collection cycles can run. Newly
// allocated objects start in the minor generation and are promoted to the
// major generation once they have survived enough minor collections; the
// major generation is marked concurrently with the mutator between two
// short stop-the-world windows, with a write barrier keeping the
// concurrent mark correct.
//
// Managed types implement the Trace interface so the mark phase can
// discover the references they own. Everything the collector detects
// itself is either fine or fatal: double registrations, out-of-turn
// stop-the-world transitions and exceeded heap limits panic, as they
// indicate corrupted invariants or resource exhaustion beyond any
// recovery policy.
package gc
