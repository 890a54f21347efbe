package gc

// Edge is an untyped reference to a managed object, as produced by Trace
// implementations. Two edges are the same if they refer to the same
// header, regardless of the typed view they were derived from.
type Edge struct {
	header *Header
}

// Same reports whether both edges refer to the same object.
func (e Edge) Same(other Edge) bool {
	return e.header == other.header
}

// Valid returns false for the zero Edge.
func (e Edge) Valid() bool {
	return e.header != nil
}

// Generation of the referenced object.
func (e Edge) Generation() Generation {
	return e.header.Generation()
}

// Liveness of the referenced object.
func (e Edge) Liveness() uint64 {
	return e.header.Liveness()
}

// Pinned reports whether the referenced object is pinned.
func (e Edge) Pinned() bool {
	return e.header.Pinned()
}

// Size of the referenced object's header+data block in bytes.
func (e Edge) Size() uint64 {
	return e.header.Size()
}

// As attempts to downcast an untyped edge to a typed read handle. It
// returns false if the object is not of type T or has been reclaimed.
func As[T Trace](e Edge) (Ref[T], bool) {
	if e.header == nil {
		return Ref[T]{}, false
	}
	data, ok := e.header.data.(*T)
	if !ok {
		return Ref[T]{}, false
	}
	return Ref[T]{header: e.header, data: data}, true
}

// Box is the owning handle returned from Allocate. It is the binding
// through which reads and write-barriered writes should be obtained.
type Box[T Trace] struct {
	state  *State
	header *Header
	data   *T
}

// Read returns a read-only view of the object. Reads do not trigger any
// barrier bookkeeping.
func (b Box[T]) Read() Ref[T] {
	return Ref[T]{header: b.header, data: b.data}
}

// Write acquires a scoped write guard for the object. The guard must be
// released exactly once, on every exit path:
//
//	w := box.Write()
//	defer w.Release()
//	w.Get().Field = value
func (b Box[T]) Write() *Mut[T] {
	return &Mut[T]{state: b.state, header: b.header, prev: b.data, end: b.data}
}

// Edge returns the untyped identity handle for the object, for use in
// Trace implementations and equality checks.
func (b Box[T]) Edge() Edge {
	return Edge{header: b.header}
}

// Pin excludes the object from promotion and relocation decisions.
// Relocation is not implemented, so this currently only guards future
// compaction.
func (b Box[T]) Pin() {
	b.header.setPinned(true)
}

// Unpin makes the object eligible for promotion again.
func (b Box[T]) Unpin() {
	b.header.setPinned(false)
}

// Ref is a read-only handle. Callers must not mutate the object through
// the pointer it exposes; mutations go through Box.Write so the write
// barrier sees them.
type Ref[T Trace] struct {
	header *Header
	data   *T
}

// Get dereferences the handle.
func (r Ref[T]) Get() *T {
	return r.data
}

// Edge returns the untyped identity handle for the object.
func (r Ref[T]) Edge() Edge {
	return Edge{header: r.header}
}

// Mut is a scoped write guard. It implements an incremental-update write
// barrier: on Release, if the data pointer changed since acquisition or
// the collector is concurrently marking, the object is queued for rescan
// so mutations made during the concurrent window are never lost.
//
// prev and end can only diverge if the data block is ever replaced;
// blocks never move in this collector, so today only the stage check
// queues rescans. The pointer pair stays so a future
// compacting/reallocating path inherits the barrier unchanged.
type Mut[T Trace] struct {
	state    *State
	header   *Header
	prev     *T
	end      *T
	released bool
}

// Get dereferences the guard for reading and writing.
func (m *Mut[T]) Get() *T {
	return m.end
}

// Set overwrites the object data.
func (m *Mut[T]) Set(value T) {
	*m.end = value
}

// Edge returns the untyped identity handle for the object.
func (m *Mut[T]) Edge() Edge {
	return Edge{header: m.header}
}

// Release completes the write. It must be called exactly once, on every
// exit path; releasing a guard twice is a fatal error.
func (m *Mut[T]) Release() {
	if m.released {
		fatalf("write guard for %v released twice", m.header.typeID)
	}
	m.released = true
	if m.prev != m.end || m.state.Stage() == StageParallelScan {
		m.state.majorRescan.insert(m.header)
	}
}
