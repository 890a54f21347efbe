package gc

// Trace is the capability a managed type must implement to participate in
// collection: return an Edge for every managed object directly owned by
// the receiver. The sequence may be empty for leaf objects and must be
// complete. Omitting a reachable reference can cause premature
// reclamation; returning a stale reference merely retains garbage.
type Trace interface {
	Trace() []Edge
}
