package gc

import "github.com/vmkit/gengc/atomics"

// pool runs mark-phase work units across a fixed set of goroutines. Work
// accounting uses a drainable WaitGroup so shutdown can refuse new work,
// and a Barrier tells the workers to exit.
type pool struct {
	tasks   chan func()
	pending atomics.WaitGroup
	stopped atomics.Barrier
}

func newPool(size int) *pool {
	p := &pool{
		tasks: make(chan func(), 4*size),
	}
	for i := 0; i < size; i++ {
		go p.run()
	}
	return p
}

func (p *pool) run() {
	for {
		select {
		case <-p.stopped.Barrier():
			return
		case task := <-p.tasks:
			task()
			p.pending.Done()
		}
	}
}

// submit queues a work unit. Returns false if the pool is shutting down,
// in which case the caller should run the work inline.
func (p *pool) submit(task func()) bool {
	if p.pending.Add(1) != nil {
		return false
	}
	p.tasks <- task
	return true
}

// wait blocks until all submitted work units have completed.
func (p *pool) wait() {
	p.pending.Wait()
}

// close waits for in-flight work and stops the workers permanently.
func (p *pool) close() {
	p.pending.WaitAndDrain()
	p.stopped.Fall()
}
