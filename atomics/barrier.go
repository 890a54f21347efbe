package atomics

import "sync"

// A Barrier is an atomic primitive that can be unblocked once, after which
// it stays permanently unblocked. The collector uses it to communicate
// permanent state changes, like shutdown of the mark worker pool.
type Barrier struct {
	m sync.Mutex
	b chan struct{}
}

func (b *Barrier) init() {
	b.m.Lock()
	defer b.m.Unlock()

	if b.b == nil {
		b.b = make(chan struct{})
	}
}

// Fall lowers the barrier, permanently unblocking anyone waiting for it.
// Returns true the first time it is called.
func (b *Barrier) Fall() bool {
	b.init()

	b.m.Lock()
	defer b.m.Unlock()

	select {
	case <-b.b:
		return false
	default:
		close(b.b)
		return true
	}
}

// IsFallen returns true, if the barrier is lowered.
func (b *Barrier) IsFallen() bool {
	select {
	case <-b.Barrier():
		return true
	default:
		return false
	}
}

// Barrier returns a channel that is closed when the barrier is lowered.
func (b *Barrier) Barrier() <-chan struct{} {
	b.init()
	return b.b
}
