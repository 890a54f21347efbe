package gc

// A Monitor receives collection life-cycle callbacks: before/after each
// minor and major collection, before/after each stop-the-world window,
// and a periodic memory-usage report. It is purely an observability seam;
// implementations must not affect collection correctness and should
// return quickly, as some callbacks run while the world is stopped.
type Monitor interface {
	StartMinorGC(minorHeapSize uint64)
	EndMinorGC(minorHeapSize uint64)
	StartMajorGC(majorHeapSize uint64)
	EndMajorGC(majorHeapSize uint64)
	StartSTW()
	EndSTW()
	RecordMemoryUsage(majorHeapSize, minorHeapSize uint64)
}

// NopMonitor is the default Monitor; it ignores every callback.
type NopMonitor struct{}

// StartMinorGC does nothing.
func (NopMonitor) StartMinorGC(uint64) {}

// EndMinorGC does nothing.
func (NopMonitor) EndMinorGC(uint64) {}

// StartMajorGC does nothing.
func (NopMonitor) StartMajorGC(uint64) {}

// EndMajorGC does nothing.
func (NopMonitor) EndMajorGC(uint64) {}

// StartSTW does nothing.
func (NopMonitor) StartSTW() {}

// EndSTW does nothing.
func (NopMonitor) EndSTW() {}

// RecordMemoryUsage does nothing.
func (NopMonitor) RecordMemoryUsage(uint64, uint64) {}

var _ Monitor = NopMonitor{}
