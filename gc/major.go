package gc

import (
	"sync/atomic"

	"github.com/vmkit/gengc/util"
)

// majorGC runs one major collection cycle:
// Ready → ParallelScan → FinalScan → ConcurrentSweep → Ready.
//
// Cycles are mutually exclusive; a caller racing an in-flight minor or
// major cycle blocks until that cycle finishes, so a minor promotion can
// never insert objects into the major generation mid-cycle.
//
// The initial root scan and the final scan happen under stop-the-world;
// everything else runs concurrently with the mutator. While the stage is
// ParallelScan the write barrier queues released writes on the rescan
// list, and FinalScan drains that list to a fixed point, so no mutation
// made during the concurrent window is ever missed.
func (s *State) majorGC() {
	s.cycle.Lock()
	defer s.cycle.Unlock()
	s.runMajorGC()
}

func (s *State) runMajorGC() {
	size := s.MajorHeapSize()
	s.monitor.StartMajorGC(size)
	atomic.StoreUint64(&s.lastMajorSize, size)

	// initial root scan, world stopped. With the cycle lock held a
	// non-ready stage means a corrupted stage machine, not a racing
	// caller.
	s.StopTheWorld()
	if !atomic.CompareAndSwapInt32(&s.stage, int32(StageReady), int32(StageParallelScan)) {
		fatalf("major collection started while stage is %s", s.Stage())
	}
	s.majorMarked.reset()
	s.majorRescan.reset()
	s.immGen.each(func(h *Header) bool {
		h.clearMark()
		return true
	})
	roots := s.collectMajorRoots()
	s.markRoots(roots)
	s.ContinueTheWorld()

	// concurrent marking on the worker pool, write barrier active
	for _, batch := range batchHeaders(roots, s.config.ThreadPoolSize) {
		batch := batch
		submitted := s.pool.submit(func() {
			for _, h := range batch {
				s.markChildren(h)
			}
		})
		if !submitted {
			for _, h := range batch {
				s.markChildren(h)
			}
		}
	}
	s.pool.wait()

	// final scan, world stopped again
	s.StopTheWorld()
	atomic.StoreInt32(&s.stage, int32(StageFinalScan))
	s.drainRescan()
	atomic.StoreInt32(&s.stage, int32(StageConcurrentSweep))
	s.ContinueTheWorld()

	// sweep concurrently with the mutator; only objects unmarked at the
	// stop-the-world snapshot are considered, so a mutator holding a
	// handle never races with reclamation
	var reclaimed uint64
	for _, h := range s.majorGen.snapshot() {
		if h.Marked() {
			h.clearMark()
			if s.config.EnableImmGen && h.Liveness() > s.config.ImmLiveness && !h.Pinned() {
				s.promoteImmortal(h)
			}
			continue
		}
		if !s.majorGen.remove(h) {
			continue
		}
		s.majorRoots.remove(h)
		reclaimed += h.size
		h.release()
	}
	subSize(&s.majorHeapSize, reclaimed)
	subSize(&s.totalHeapSize, reclaimed)

	atomic.StoreInt32(&s.stage, int32(StageReady))
	s.monitor.EndMajorGC(s.MajorHeapSize())
}

// drainRescan empties the rescan list to a fixed point while the world
// is stopped. Marking a queued object can reach objects that were
// themselves mutated and queued, so the loop runs until a take comes
// back empty.
func (s *State) drainRescan() {
	for {
		batch := s.majorRescan.takeAll()
		if len(batch) == 0 {
			return
		}
		for _, h := range batch {
			s.markHeader(h)
			s.markChildren(h)
		}
	}
}

// collectMajorRoots snapshots the major root set and walks the live minor
// graph to discover major objects referenced from the nursery; those act
// as extra roots for this cycle only, which avoids keeping stale boundary
// roots alive forever. Must run while the world is stopped.
func (s *State) collectMajorRoots() []*Header {
	roots := s.majorRoots.snapshot()
	seen := make(map[*Header]bool, len(roots))
	for _, h := range roots {
		seen[h] = true
	}

	visited := make(map[*Header]bool)
	stack := s.minorRoots.snapshot()
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[h] {
			continue
		}
		visited[h] = true
		if h.Generation() == GenMinor {
			for _, e := range h.trace() {
				if e.header != nil {
					stack = append(stack, e.header)
				}
			}
			continue
		}
		if !seen[h] {
			seen[h] = true
			roots = append(roots, h)
		}
	}
	return roots
}

// markRoots marks the root snapshot in parallel while the world is
// stopped. Children are not followed here; the concurrent phase does
// that.
func (s *State) markRoots(roots []*Header) {
	batches := batchHeaders(roots, s.config.ThreadPoolSize)
	fns := make([]func(), len(batches))
	for i, batch := range batches {
		batch := batch
		fns[i] = func() {
			for _, h := range batch {
				s.markHeader(h)
			}
		}
	}
	util.Parallel(fns...)
}

// markHeader marks a single object without following its references.
func (s *State) markHeader(h *Header) {
	switch h.Generation() {
	case GenMajor:
		if h.setMark() {
			s.majorMarked.insert(h)
			h.bumpLiveness()
		}
	case GenImmortal:
		// marks on immortal objects are traversal dedupe only; the
		// immortal generation is never swept
		h.setMark()
	}
}

// markChildren traces h and marks everything reachable from it. Safe to
// run from multiple workers at once: the mark flag is checked-and-set
// atomically, so racing markers never duplicate work indefinitely.
func (s *State) markChildren(h *Header) {
	var gray []*Header
	for _, e := range h.trace() {
		if e.header != nil {
			gray = append(gray, e.header)
		}
	}
	for len(gray) > 0 {
		c := gray[len(gray)-1]
		gray = gray[:len(gray)-1]
		switch c.Generation() {
		case GenMinor:
			// the minor cycle owns the nursery
			continue
		case GenMajor:
			if !c.setMark() {
				continue
			}
			s.majorMarked.insert(c)
			c.bumpLiveness()
		case GenImmortal:
			if !c.setMark() {
				continue
			}
		}
		for _, e := range c.trace() {
			if e.header != nil {
				gray = append(gray, e.header)
			}
		}
	}
}

// promoteImmortal moves a long-lived major object into the immortal
// generation. It keeps its root membership so anything it owns stays
// reachable.
func (s *State) promoteImmortal(h *Header) {
	if !s.majorGen.remove(h) {
		return
	}
	h.setGeneration(GenImmortal)
	subSize(&s.majorHeapSize, h.size)
	atomic.AddUint64(&s.immHeapSize, h.size)
	if !s.immGen.insert(h) {
		fatalf("object %v already present in the immortal generation", h.typeID)
	}
}

// batchHeaders splits headers into at most n roughly equal batches.
func batchHeaders(headers []*Header, n int) [][]*Header {
	if len(headers) == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	per := (len(headers) + n - 1) / n
	var batches [][]*Header
	for start := 0; start < len(headers); start += per {
		end := start + per
		if end > len(headers) {
			end = len(headers)
		}
		batches = append(batches, headers[start:end])
	}
	return batches
}
