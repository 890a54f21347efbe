package gc

import "runtime"

// Config holds the collector tunables. The zero value is not usable; start
// from DefaultConfig and override what you need. Configuration is
// immutable once handed to NewState.
type Config struct {
	// ThreadPoolSize is the number of goroutines marking in parallel
	// during a major collection. Default is a quarter of the logical
	// cores, minimum 1.
	ThreadPoolSize int

	// MinorGCTriggerSize forces a minor collection when the minor heap
	// exceeds this many bytes. Default is 10 MiB.
	MinorGCTriggerSize uint64

	// MinorHeapSizeLimit is the hard minor heap ceiling in bytes.
	// Exceeding it is a fatal out-of-memory condition; it usually means
	// allocation is outpacing collection. Default is 100 MiB.
	MinorHeapSizeLimit uint64

	// MajorHeapLiveness is the number of minor collections an object must
	// survive before it is promoted to the major generation. Default is 3.
	MajorHeapLiveness uint64

	// MajorGCPacerRate triggers a major collection when the major heap
	// grows past rate × its size at the start of the last major
	// collection. Default is 2.0.
	MajorGCPacerRate float64

	// MajorHeapSizeLimit is the hard major heap ceiling in bytes.
	// Exceeding a nonzero limit is a fatal out-of-memory condition; it
	// usually means the program is leaking memory or the machine is too
	// small for it. Default is 0, meaning unbounded.
	MajorHeapSizeLimit uint64

	// EnableImmGen enables the immortal generation. Objects that live
	// longer than ImmLiveness collection cycles stop being traced and are
	// never reclaimed, trading memory for not re-marking long-lived data
	// over and over. Leaks get harder to spot with this on. Default is
	// false.
	EnableImmGen bool

	// ImmLiveness is the number of collection cycles after which a major
	// object is promoted to the immortal generation. Default is 100.
	ImmLiveness uint64
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	poolSize := runtime.NumCPU() / 4
	if poolSize < 1 {
		poolSize = 1
	}
	return Config{
		ThreadPoolSize:     poolSize,
		MinorGCTriggerSize: 10 * 1024 * 1024,
		MinorHeapSizeLimit: 100 * 1024 * 1024,
		MajorHeapLiveness:  3,
		MajorGCPacerRate:   2.0,
		MajorHeapSizeLimit: 0,
		EnableImmGen:       false,
		ImmLiveness:        100,
	}
}
