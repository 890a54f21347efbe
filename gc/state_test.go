package gc

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateDefaults(t *testing.T) {
	s := NewState(Config{}, nil)
	assert.True(t, s.Config().ThreadPoolSize > 0)
	assert.Equal(t, StageReady, s.Stage())
	assert.False(t, s.Stopped())
	assert.Equal(t, uint64(0), s.MinorHeapSize())
	assert.Equal(t, uint64(0), s.MajorHeapSize())
	assert.Equal(t, uint64(0), s.ImmortalHeapSize())
	assert.Equal(t, uint64(0), s.TotalHeapSize())
	s.Dispose()
}

func TestSafepointRequests(t *testing.T) {
	c := testConfig()
	c.MinorGCTriggerSize = 1 << 30 // never trigger on size
	s := NewState(c, nil)
	f := s.NewFrame()

	scratch := f.NewChild()
	garbage := Allocate(scratch, testLeaf{})
	scratch.Close()

	// nothing requested and nothing triggered: no collection
	s.Safepoint()
	_, ok := As[testLeaf](garbage.Edge())
	require.True(t, ok)

	s.RequestMinorGC()
	s.Safepoint()
	_, ok = As[testLeaf](garbage.Edge())
	assert.False(t, ok, "requested minor collection must run")

	// the request flag is consumed
	scratch = f.NewChild()
	garbage = Allocate(scratch, testLeaf{})
	scratch.Close()
	s.Safepoint()
	_, ok = As[testLeaf](garbage.Edge())
	assert.True(t, ok)

	s.RequestMajorGC()
	s.Safepoint()
	assert.Equal(t, uint64(0), atomic.LoadUint64(&s.lastMajorSize),
		"major collection must record its starting heap size")
	assert.Equal(t, StageReady, s.Stage())
}

func TestSafepointTriggerSize(t *testing.T) {
	c := testConfig()
	c.MinorGCTriggerSize = 1 // every allocation crosses the trigger
	s := NewState(c, nil)
	f := s.NewFrame()

	scratch := f.NewChild()
	garbage := Allocate(scratch, testLeaf{})
	scratch.Close()

	s.Safepoint()
	_, ok := As[testLeaf](garbage.Edge())
	assert.False(t, ok)
}

func TestSafepointConcurrent(t *testing.T) {
	c := testConfig()
	c.MinorGCTriggerSize = 1 // every safepoint sees the trigger exceeded
	c.MajorHeapLiveness = 1
	s := NewState(c, nil)
	f := s.NewFrame()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				scratch := f.NewChild()
				Allocate(scratch, testLeaf{value: j})
				scratch.Close()
				if i%2 == 0 {
					s.RequestMajorGC()
				}
				s.Safepoint()
			}
		}()
	}
	wg.Wait()

	// racing safepoints serialize their cycles instead of aborting
	assert.Equal(t, StageReady, s.Stage())
	assert.False(t, s.Stopped())

	s.minorGC()
	s.majorGC()
	assert.Equal(t, uint64(0), s.MinorHeapSize())
	assert.Equal(t, uint64(0), s.MajorHeapSize())
	assert.Equal(t, uint64(0), s.TotalHeapSize())
}

func TestDispose(t *testing.T) {
	s := NewState(testConfig(), nil)
	f := s.NewFrame()
	f.Close()

	s.Dispose()
	s.Dispose() // safe to call twice

	// the worker pool no longer accepts tasks
	assert.False(t, s.pool.submit(func() {}))
}
