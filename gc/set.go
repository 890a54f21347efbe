package gc

import "sync"

// headerSet is a concurrent membership structure over header pointers.
// Insert, remove and contains may be called from multiple threads without
// blocking each other; iteration gives no ordering guarantees. The
// generation sets only need membership, so this is all there is.
type headerSet struct {
	m sync.Map // *Header -> struct{}
}

// insert adds h and reports whether it was newly added.
func (s *headerSet) insert(h *Header) bool {
	_, loaded := s.m.LoadOrStore(h, struct{}{})
	return !loaded
}

// remove deletes h and reports whether it was present.
func (s *headerSet) remove(h *Header) bool {
	_, loaded := s.m.LoadAndDelete(h)
	return loaded
}

func (s *headerSet) contains(h *Header) bool {
	_, ok := s.m.Load(h)
	return ok
}

// each calls fn for every member until fn returns false.
func (s *headerSet) each(fn func(h *Header) bool) {
	s.m.Range(func(key, _ interface{}) bool {
		return fn(key.(*Header))
	})
}

// size counts members. O(n), intended for reporting and tests.
func (s *headerSet) size() int {
	n := 0
	s.each(func(*Header) bool {
		n++
		return true
	})
	return n
}

// snapshot copies the current membership into a slice.
func (s *headerSet) snapshot() []*Header {
	var headers []*Header
	s.each(func(h *Header) bool {
		headers = append(headers, h)
		return true
	})
	return headers
}

// takeAll removes and returns every member present at the time of the
// call. Members inserted concurrently may or may not be included; the
// rescan drain loops until takeAll comes back empty.
func (s *headerSet) takeAll() []*Header {
	var headers []*Header
	s.each(func(h *Header) bool {
		if s.remove(h) {
			headers = append(headers, h)
		}
		return true
	})
	return headers
}

// reset drops all members.
func (s *headerSet) reset() {
	s.each(func(h *Header) bool {
		s.remove(h)
		return true
	})
}
