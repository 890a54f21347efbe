// Package util holds small helpers with no better home.
package util

import "sync"

// Parallel takes a list of functions and calls them all in parallel,
// returning when all the functions are done.
//
// This doesn't have any nice error or panic handling and is aimed as a
// construct to be used inside other functions, mainly to reduce
// boiler-plate. The collector uses it to fan out root scanning while the
// world is stopped.
func Parallel(f ...func()) {
	wg := sync.WaitGroup{}
	wg.Add(len(f))

	for _, fn := range f {
		go func(fn func()) {
			defer wg.Done()
			fn()
		}(fn)
	}

	wg.Wait()
}
