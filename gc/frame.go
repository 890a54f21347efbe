package gc

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/vmkit/gengc/atomics"
)

// block is the single contiguous allocation backing one managed object:
// the header immediately followed by the object data. Handles point into
// this block; it never moves once allocated.
type block[T Trace] struct {
	header Header
	data   T
}

func blockSize[T Trace]() uint64 {
	var blk block[T]
	return uint64(reflect.TypeOf(blk).Size())
}

// Frame is a scoped allocation context, typically one per call-stack
// frame in the host. It tracks the objects allocated through it; those
// stay roots until the frame is closed. Objects that outlive the frame
// must be handed over with Escape before Close, so they are reparented
// into the enclosing scope instead of losing their root status.
//
// Multiple frames may allocate concurrently; the heap counter and the
// registration sets are the only shared state and neither blocks
// allocation of unrelated objects.
type Frame struct {
	state      *State
	parent     *Frame
	registered headerSet

	m       sync.Mutex
	escaped *Header // intrusive list linked through Header.escNext

	closed atomics.Once
}

// NewFrame opens a top-level allocation scope.
func (s *State) NewFrame() *Frame {
	s.frames.Add(1)
	return &Frame{state: s}
}

// NewChild opens an allocation scope nested inside f. Objects escaping
// the child are handed to f when the child is closed.
func (f *Frame) NewChild() *Frame {
	f.state.frames.Add(1)
	return &Frame{state: f.state, parent: f}
}

// Allocate creates a managed object holding value and returns the owning
// handle. The new object starts in the minor generation with liveness 1
// and unmarked. Exceeding the configured minor heap limit is fatal, as is
// a registration collision, which would indicate a corrupted header.
func Allocate[T Trace](f *Frame, value T) Box[T] {
	s := f.state
	size := blockSize[T]()
	s.addMinorSize(size)
	atomic.AddUint64(&s.totalHeapSize, size)

	blk := &block[T]{data: value}
	hdr := &blk.header
	hdr.init(reflect.TypeOf(value), &blk.data, size)
	hdr.traceFn = func() []Edge { return blk.data.Trace() }

	if !f.registered.insert(hdr) {
		fatalf("object %v already registered in frame", hdr.typeID)
	}
	if !s.minorGen.insert(hdr) {
		fatalf("object %v already present in the minor generation", hdr.typeID)
	}
	s.minorRoots.insert(hdr)

	return Box[T]{state: s, header: hdr, data: &blk.data}
}

// Escape marks the object as outliving this frame. On Close it will be
// reparented into the enclosing frame, or stay in the global roots when
// this is a top-level frame. Escaping an object that was not allocated
// through this frame is a fatal error.
func (f *Frame) Escape(e Edge) {
	if e.header == nil {
		fatalf("cannot escape an invalid edge")
	}
	if !f.registered.remove(e.header) {
		fatalf("object %v escaping a frame it is not registered in", e.header.typeID)
	}
	f.m.Lock()
	e.header.escNext = f.escaped
	f.escaped = e.header
	f.m.Unlock()
}

// Close ends the allocation scope. Escaped objects are linked into the
// enclosing frame's tracking set; everything else loses its root status
// and lives until the next collection decides reachability. Closing twice
// is a no-op.
func (f *Frame) Close() {
	f.closed.Do(func() {
		f.m.Lock()
		escaped := f.escaped
		f.escaped = nil
		f.m.Unlock()

		for h := escaped; h != nil; {
			next := h.escNext
			h.escNext = nil
			if f.parent != nil {
				if !f.parent.registered.insert(h) {
					fatalf("object %v already registered in the enclosing frame", h.typeID)
				}
			}
			// top-level escapes keep their membership in the global
			// root sets
			h = next
		}

		f.registered.each(func(h *Header) bool {
			f.state.roots.Lock()
			f.state.minorRoots.remove(h)
			f.state.majorRoots.remove(h)
			f.state.roots.Unlock()
			return true
		})

		f.state.frames.Add(-1)
	})
}
