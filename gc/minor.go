package gc

import "sync/atomic"

// minorGC runs one minor collection cycle, Ready → Scan → Sweep → Ready,
// on the calling thread. Cycles are mutually exclusive; a caller racing
// an in-flight minor or major cycle blocks until that cycle finishes.
// Reachability starts from the minor roots; every reachable object has
// its liveness bumped and is either promoted to the major generation or
// marked to survive the sweep. Unmarked objects move to the dead set and
// their memory is released.
func (s *State) minorGC() {
	s.cycle.Lock()
	defer s.cycle.Unlock()
	s.runMinorGC()
}

func (s *State) runMinorGC() {
	// with the cycle lock held a non-ready stage means a corrupted stage
	// machine, not a racing caller
	if !atomic.CompareAndSwapInt32(&s.minorStage, int32(minorReady), int32(minorScan)) {
		fatalf("minor collection started while one is already running")
	}
	s.monitor.StartMinorGC(s.MinorHeapSize())

	// Scan
	s.checkMinorLimit()
	s.minorMarked.reset()
	s.minorDead.reset()

	// snapshot the sweep candidates before marking, so objects allocated
	// while the cycle runs are never sweep candidates
	candidates := s.minorGen.snapshot()

	gray := s.minorRoots.snapshot()
	for len(gray) > 0 {
		h := gray[len(gray)-1]
		gray = gray[:len(gray)-1]
		if h.Generation() != GenMinor {
			// generational boundary: the major cycle owns everything
			// past this point
			continue
		}
		if !h.setMark() {
			continue
		}
		if h.bumpLiveness() > s.config.MajorHeapLiveness && !h.Pinned() {
			s.promote(h)
		} else {
			s.minorMarked.insert(h)
		}
		for _, e := range h.trace() {
			if e.header != nil {
				gray = append(gray, e.header)
			}
		}
	}

	// Sweep
	atomic.StoreInt32(&s.minorStage, int32(minorSweep))
	var reclaimed uint64
	for _, h := range candidates {
		if h.Generation() != GenMinor {
			continue // promoted during this scan
		}
		if h.Marked() {
			h.clearMark()
			continue
		}
		if !s.minorGen.remove(h) {
			continue
		}
		s.minorRoots.remove(h)
		s.minorDead.insert(h)
		reclaimed += h.size
		h.release()
	}
	subSize(&s.minorHeapSize, reclaimed)
	subSize(&s.totalHeapSize, reclaimed)

	atomic.StoreInt32(&s.minorStage, int32(minorReady))
	s.monitor.EndMinorGC(s.MinorHeapSize())
}

// promote moves an object from the minor to the major generation. The
// object itself never moves; only set membership and the generation tag
// change. Root status carries over.
func (s *State) promote(h *Header) {
	if !s.minorGen.remove(h) {
		fatalf("promoting object %v that is not in the minor generation", h.typeID)
	}
	h.clearMark()
	h.setGeneration(GenMajor)
	subSize(&s.minorHeapSize, h.size)
	s.addMajorSize(h.size)
	s.roots.Lock()
	if s.minorRoots.remove(h) {
		s.majorRoots.insert(h)
	}
	s.roots.Unlock()
	if !s.majorGen.insert(h) {
		fatalf("object %v already present in the major generation", h.typeID)
	}
}
