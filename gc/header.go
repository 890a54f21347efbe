package gc

import (
	"reflect"
	"sync/atomic"
)

// Generation tags the heap generation an object currently belongs to. An
// object is in exactly one generation at a time; promotion moves set
// membership, never the object itself, so addresses stay stable.
type Generation uint32

const (
	// GenMinor is the nursery: recently allocated, short-lived objects,
	// collected frequently.
	GenMinor Generation = iota
	// GenMajor holds objects that survived enough minor collections;
	// collected less frequently and partly concurrently.
	GenMajor
	// GenImmortal holds objects exempted from collection entirely.
	GenImmortal
)

func (g Generation) String() string {
	switch g {
	case GenMinor:
		return "minor"
	case GenMajor:
		return "major"
	case GenImmortal:
		return "immortal"
	default:
		return "unknown"
	}
}

// Header is the per-object metadata the collector maintains. It sits at
// the front of the allocation that also holds the object data, so a
// header pointer uniquely identifies one object; handle equality is
// defined as header identity.
type Header struct {
	liveness   uint64
	marked     uint32
	pinned     uint32
	generation uint32

	size    uint64
	typeID  reflect.Type
	data    interface{} // *T, for safe downcast
	traceFn func() []Edge

	// intrusive link used by Frame escape lists
	escNext *Header
}

// init must be called exactly once, immediately after the header+data
// block is obtained and before any handle is published.
func (h *Header) init(typeID reflect.Type, data interface{}, size uint64) {
	h.typeID = typeID
	h.data = data
	h.size = size
	atomic.StoreUint64(&h.liveness, 1)
	atomic.StoreUint32(&h.marked, 0)
	atomic.StoreUint32(&h.pinned, 0)
	atomic.StoreUint32(&h.generation, uint32(GenMinor))
}

// Liveness returns the number of collection cycles the object has
// survived, starting at 1 on allocation.
func (h *Header) Liveness() uint64 {
	return atomic.LoadUint64(&h.liveness)
}

func (h *Header) bumpLiveness() uint64 {
	return atomic.AddUint64(&h.liveness, 1)
}

// Marked returns true if the object has been marked reachable in the
// current collection cycle.
func (h *Header) Marked() bool {
	return atomic.LoadUint32(&h.marked) != 0
}

// setMark sets the mark flag and reports whether this call set it. Racing
// markers may call this concurrently; exactly one of them wins, so work
// is never duplicated indefinitely.
func (h *Header) setMark() bool {
	return atomic.CompareAndSwapUint32(&h.marked, 0, 1)
}

func (h *Header) clearMark() {
	atomic.StoreUint32(&h.marked, 0)
}

// Pinned returns true if the object is excluded from promotion and future
// relocation decisions.
func (h *Header) Pinned() bool {
	return atomic.LoadUint32(&h.pinned) != 0
}

func (h *Header) setPinned(pinned bool) {
	if pinned {
		atomic.StoreUint32(&h.pinned, 1)
	} else {
		atomic.StoreUint32(&h.pinned, 0)
	}
}

// Generation returns the generation the object currently belongs to.
func (h *Header) Generation() Generation {
	return Generation(atomic.LoadUint32(&h.generation))
}

func (h *Header) setGeneration(g Generation) {
	atomic.StoreUint32(&h.generation, uint32(g))
}

// Size returns the size in bytes of the whole header+data block, as
// accounted against the heap counters.
func (h *Header) Size() uint64 {
	return h.size
}

// Type returns the type identity of the object data.
func (h *Header) Type() reflect.Type {
	return h.typeID
}

// trace enumerates the managed references the object owns. Returns nil
// once the object has been released.
func (h *Header) trace() []Edge {
	if h.traceFn == nil {
		return nil
	}
	return h.traceFn()
}

// release drops the object data so the block can be reclaimed. Only sweep
// may call this, and only on objects proven unreachable.
func (h *Header) release() {
	h.data = nil
	h.traceFn = nil
}
