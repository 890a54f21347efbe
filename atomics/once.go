package atomics

import "sync"

// Once is similar to sync.Once except that once.Do() returns true, if this
// was the call that did it. Additionally, once.Wait() blocks until the
// first once.Do() call has completed.
//
// The collector uses this for operations that must happen exactly once on
// every exit path, like closing an allocation frame or tearing down the
// collector state.
type Once struct {
	m    sync.Mutex
	done Bool
	c    chan struct{}
}

// Do calls f() and returns true, the first time once.Do() is called.
// All following calls will not call f() and return false.
//
// Do(nil) is allowed and acts like Do(func() {}).
func (o *Once) Do(f func()) bool {
	// Quickly check if done
	if o.done.Get() {
		return false
	}

	o.m.Lock()
	defer o.m.Unlock()

	if o.done.Get() {
		return false
	}

	// Unblock waiters, even if f panics
	defer func() {
		if o.c != nil {
			close(o.c)
		}
	}()
	defer o.done.Set(true)

	if f != nil {
		f()
	}
	return true
}

// IsDone returns true if once.Do() has been called.
func (o *Once) IsDone() bool {
	return o.done.Get()
}

// Wait blocks until once.Do() has been called.
func (o *Once) Wait() {
	if o.done.Get() {
		return
	}

	o.m.Lock()
	if o.done.Get() {
		o.m.Unlock()
		return
	}
	if o.c == nil {
		o.c = make(chan struct{})
	}
	o.m.Unlock()

	<-o.c
}
