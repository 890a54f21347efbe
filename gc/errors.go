package gc

import "github.com/pkg/errors"

// fatalf reports a condition the collector cannot recover from: a
// corrupted invariant, an out-of-turn stop-the-world transition, or an
// exhausted hard memory limit. It panics at the call site that detected
// the condition; the host must treat it as process-fatal.
func fatalf(format string, args ...interface{}) {
	panic(errors.Errorf("gc: fatal: "+format, args...))
}
