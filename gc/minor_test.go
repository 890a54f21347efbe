package gc

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorSweepReachability(t *testing.T) {
	s := NewState(testConfig(), nil)
	f := s.NewFrame()

	scratch := f.NewChild()
	child := Allocate(scratch, testLeaf{value: 1})
	orphan := Allocate(scratch, testLeaf{value: 2})
	scratch.Close()

	Allocate(f, testNode{refs: []Edge{child.Edge()}})
	s.minorGC()

	_, ok := As[testLeaf](child.Edge())
	assert.True(t, ok, "object referenced from a live root must survive")
	_, ok = As[testLeaf](orphan.Edge())
	assert.False(t, ok, "unreferenced object must be reclaimed")
	assert.True(t, s.minorDead.contains(orphan.Edge().header))
	assert.Equal(t, blockSize[testLeaf]()+blockSize[testNode](), s.MinorHeapSize())
}

func TestMinorPromotionThreshold(t *testing.T) {
	c := testConfig()
	c.MajorHeapLiveness = 3
	s := NewState(c, nil)
	f := s.NewFrame()
	b := Allocate(f, testLeaf{})
	h := b.Edge().header
	require.Equal(t, uint64(1), b.Edge().Liveness())

	s.minorGC() // liveness 2
	s.minorGC() // liveness 3
	assert.Equal(t, GenMinor, b.Edge().Generation())
	assert.True(t, s.minorGen.contains(h))

	s.minorGC() // liveness 4, crosses the threshold
	assert.Equal(t, GenMajor, b.Edge().Generation())
	assert.Equal(t, uint64(4), b.Edge().Liveness())
	assert.False(t, s.minorGen.contains(h))
	assert.True(t, s.majorGen.contains(h))
	assert.True(t, s.majorRoots.contains(h), "root status carries over on promotion")
	assert.Equal(t, uint64(0), s.MinorHeapSize())
	assert.Equal(t, h.size, s.MajorHeapSize())
	assert.Equal(t, h.size, s.TotalHeapSize())
}

func TestMinorPinnedNotPromoted(t *testing.T) {
	c := testConfig()
	c.MajorHeapLiveness = 2
	s := NewState(c, nil)
	f := s.NewFrame()
	b := Allocate(f, testLeaf{})
	b.Pin()

	for i := 0; i < 5; i++ {
		s.minorGC()
	}
	assert.Equal(t, GenMinor, b.Edge().Generation())

	b.Unpin()
	s.minorGC()
	assert.Equal(t, GenMajor, b.Edge().Generation())
}

func TestMinorMarkIdempotent(t *testing.T) {
	s := NewState(testConfig(), nil)
	f := s.NewFrame()
	a := Allocate(f, testNode{})
	b := Allocate(f, testNode{})

	// build a cycle: a -> b -> a
	w := a.Write()
	w.Get().refs = []Edge{b.Edge()}
	w.Release()
	w = b.Write()
	w.Get().refs = []Edge{a.Edge()}
	w.Release()

	s.minorGC()

	// each object is visited exactly once per cycle
	assert.Equal(t, uint64(2), a.Edge().Liveness())
	assert.Equal(t, uint64(2), b.Edge().Liveness())
	assert.Equal(t, 2, s.minorMarked.size())
}

func TestMinorRestartFatal(t *testing.T) {
	s := NewState(testConfig(), nil)
	atomic.StoreInt32(&s.minorStage, int32(minorScan))
	require.Panics(t, func() {
		s.minorGC()
	})
}

func TestMinorLimitMidCycle(t *testing.T) {
	size := blockSize[testLeaf]()
	c := testConfig()
	c.MinorHeapSizeLimit = size
	s := NewState(c, nil)
	f := s.NewFrame()
	Allocate(f, testLeaf{})

	// simulate an overshoot that happened between safepoints
	atomic.AddUint64(&s.minorHeapSize, 1)
	require.Panics(t, func() {
		s.minorGC()
	})
}

func TestPromoteUnknownFatal(t *testing.T) {
	s := NewState(testConfig(), nil)
	h := &Header{}
	require.Panics(t, func() {
		s.promote(h)
	})
}
