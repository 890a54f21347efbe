package gc

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/vmkit/gengc/atomics"
)

// Stage is the major collection stage. The write barrier consults it to
// decide whether released writes must be queued for rescan.
type Stage int32

const (
	// StageReady is the starting stage; the mutator runs freely. When a
	// concurrent sweep finishes the collector is back here.
	StageReady Stage = iota
	// StageParallelScan means the initial root scan finished, the world
	// resumed, and marking continues on the worker pool with the write
	// barrier active.
	StageParallelScan
	// StageFinalScan means the world is stopped again and the rescan list
	// is being drained to a fixed point.
	StageFinalScan
	// StageConcurrentSweep means unmarked major objects are being
	// reclaimed while the mutator runs.
	StageConcurrentSweep
)

func (s Stage) String() string {
	switch s {
	case StageReady:
		return "ready"
	case StageParallelScan:
		return "parallel-scan"
	case StageFinalScan:
		return "final-scan"
	case StageConcurrentSweep:
		return "concurrent-sweep"
	default:
		return "unknown"
	}
}

// minor collection stages, internal to the minor cycle driver
type minorStage int32

const (
	minorReady minorStage = iota
	minorScan
	minorSweep
)

// State is the process-wide collector context. Create it once at process
// start with NewState, inject it into every allocation scope via
// NewFrame, and tear it down at process exit with Dispose. It owns the
// generation sets, the heap size counters, the stop-the-world flag, the
// collection stage machines and the mark worker pool.
type State struct {
	config  Config
	monitor Monitor
	pool    *pool

	// stop-the-world flag, toggled by CAS only
	stw uint32

	// cycle serializes collection cycles: any number of host threads may
	// reach their safepoints at once, but at most one minor or major
	// cycle runs at a time
	cycle sync.Mutex

	// roots guards the minor→major root handoff on promotion against a
	// concurrent frame teardown dropping root status in between
	roots sync.Mutex

	minorRequested atomics.Bool
	majorRequested atomics.Bool

	stage      int32 // Stage
	minorStage int32 // minorStage

	minorHeapSize uint64
	majorHeapSize uint64
	immHeapSize   uint64
	totalHeapSize uint64
	lastMajorSize uint64 // major heap size at last major collection start

	frames atomics.Counter
	closed atomics.Once

	// minor generation
	minorRoots  headerSet
	minorGen    headerSet
	minorMarked headerSet
	minorDead   headerSet

	// major generation
	majorRoots  headerSet
	majorGen    headerSet
	majorMarked headerSet
	majorRescan headerSet // objects mutated while major marking was concurrent

	// immortal generation
	immGen headerSet
}

// NewState creates the collector context. A nil monitor means no
// monitoring. Configuration is fixed for the lifetime of the State.
func NewState(config Config, monitor Monitor) *State {
	if monitor == nil {
		monitor = NopMonitor{}
	}
	if config.ThreadPoolSize <= 0 {
		config.ThreadPoolSize = DefaultConfig().ThreadPoolSize
	}
	s := &State{
		config:  config,
		monitor: monitor,
		pool:    newPool(config.ThreadPoolSize),
	}
	// pacer baseline before the first major collection
	atomic.StoreUint64(&s.lastMajorSize, config.MinorGCTriggerSize)
	return s
}

// Config returns the collector configuration.
func (s *State) Config() Config {
	return s.config
}

// StopTheWorld pauses the mutator. The host's threads are expected to
// have reached their cooperation points; the collector only flips the
// flag. Stopping an already-stopped world is a fatal programming error in
// the collector itself, not a recoverable condition.
func (s *State) StopTheWorld() {
	s.monitor.StartSTW()
	if !atomic.CompareAndSwapUint32(&s.stw, 0, 1) {
		fatalf("could not stop the world twice")
	}
}

// ContinueTheWorld resumes the mutator. Continuing a world that is not
// stopped is a fatal programming error.
func (s *State) ContinueTheWorld() {
	s.monitor.EndSTW()
	if !atomic.CompareAndSwapUint32(&s.stw, 1, 0) {
		fatalf("cannot continue a world that is not stopped")
	}
}

// Stopped reports whether the world is currently stopped. Host threads
// check this at their safe points.
func (s *State) Stopped() bool {
	return atomic.LoadUint32(&s.stw) != 0
}

// Stage returns the current major collection stage.
func (s *State) Stage() Stage {
	return Stage(atomic.LoadInt32(&s.stage))
}

// MinorHeapSize returns the minor heap size in bytes.
func (s *State) MinorHeapSize() uint64 {
	return atomic.LoadUint64(&s.minorHeapSize)
}

// MajorHeapSize returns the major heap size in bytes.
func (s *State) MajorHeapSize() uint64 {
	return atomic.LoadUint64(&s.majorHeapSize)
}

// ImmortalHeapSize returns the immortal generation size in bytes.
func (s *State) ImmortalHeapSize() uint64 {
	return atomic.LoadUint64(&s.immHeapSize)
}

// TotalHeapSize returns the total managed heap size in bytes.
func (s *State) TotalHeapSize() uint64 {
	return atomic.LoadUint64(&s.totalHeapSize)
}

// FrameCount returns the number of allocation frames currently open.
func (s *State) FrameCount() int {
	return s.frames.Value()
}

// RequestMinorGC forces a minor collection at the next safepoint.
func (s *State) RequestMinorGC() {
	s.minorRequested.Set(true)
}

// RequestMajorGC forces a major collection at the next safepoint.
func (s *State) RequestMajorGC() {
	s.majorRequested.Set(true)
}

// Safepoint is the host's cooperation point. It pauses the calling
// thread while the world is stopped, then runs any pending or triggered
// collection cycles and reports memory usage to the monitor. Safe to
// call from any number of host threads; cycles are serialized, and a
// caller whose trigger was already served by a concurrent cycle simply
// returns. Allocation itself never blocks on collection; cycles only
// run here.
func (s *State) Safepoint() {
	for s.Stopped() {
		runtime.Gosched()
	}
	if s.minorRequested.Swap(false) || s.MinorHeapSize() >= s.config.MinorGCTriggerSize {
		s.minorGC()
	}
	if s.majorRequested.Swap(false) || s.pacerExceeded() {
		s.majorGC()
	}
	s.monitor.RecordMemoryUsage(s.MajorHeapSize(), s.MinorHeapSize())
}

// pacerExceeded reports whether the major heap has grown past the pacer
// ratio relative to its size at the last major collection start.
func (s *State) pacerExceeded() bool {
	last := atomic.LoadUint64(&s.lastMajorSize)
	if last == 0 {
		last = s.config.MinorGCTriggerSize
	}
	size := atomic.LoadUint64(&s.majorHeapSize)
	return size > 0 && float64(size) >= s.config.MajorGCPacerRate*float64(last)
}

// Dispose tears down the collector at process exit. It waits for all
// allocation frames to be closed and stops the worker pool. Safe to call
// more than once.
func (s *State) Dispose() {
	s.closed.Do(func() {
		s.frames.WaitForZero()
		s.pool.close()
	})
}

// addMinorSize grows the minor heap counter, enforcing the hard limit.
// Growing exactly up to the limit is allowed; going past it is fatal.
func (s *State) addMinorSize(delta uint64) {
	size := atomic.AddUint64(&s.minorHeapSize, delta)
	if limit := s.config.MinorHeapSizeLimit; limit > 0 && size > limit {
		fatalf("out of memory: minor heap size %d exceeds limit %d; allocation is outpacing collection", size, limit)
	}
}

// addMajorSize grows the major heap counter, enforcing the hard limit if
// one is configured.
func (s *State) addMajorSize(delta uint64) {
	size := atomic.AddUint64(&s.majorHeapSize, delta)
	if limit := s.config.MajorHeapSizeLimit; limit > 0 && size > limit {
		fatalf("out of memory: major heap size %d exceeds limit %d; the program is leaking or the heap is undersized", size, limit)
	}
}

// checkMinorLimit re-validates the minor heap ceiling mid-cycle, so an
// overshoot that happened between safepoints still aborts.
func (s *State) checkMinorLimit() {
	size := s.MinorHeapSize()
	if limit := s.config.MinorHeapSizeLimit; limit > 0 && size > limit {
		fatalf("out of memory: minor heap size %d exceeds limit %d; allocation is outpacing collection", size, limit)
	}
}

func subSize(addr *uint64, delta uint64) {
	atomic.AddUint64(addr, ^(delta - 1))
}
