package gc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmkit/gengc/gc"
	"github.com/vmkit/gengc/mocks"
)

type item struct {
	name string
	refs []gc.Edge
}

func (i item) Trace() []gc.Edge { return i.refs }

func TestCollectorLifecycle(t *testing.T) {
	monitor := mocks.NewMockMonitor()
	cfg := gc.DefaultConfig()
	cfg.ThreadPoolSize = 2
	state := gc.NewState(cfg, monitor)

	frame := state.NewFrame()
	root := gc.Allocate(frame, item{name: "root"})

	scratch := frame.NewChild()
	child := gc.Allocate(scratch, item{name: "child"})
	temp := gc.Allocate(scratch, item{name: "temp"})
	scratch.Close()

	w := root.Write()
	w.Get().refs = []gc.Edge{child.Edge()}
	w.Release()

	state.RequestMinorGC()
	state.Safepoint()

	require.Equal(t, 1, monitor.CountEvent("start-minor-gc"), monitor.String())
	require.Equal(t, 1, monitor.CountEvent("end-minor-gc"), monitor.String())
	assert.Equal(t, 1, monitor.CountEvent("record-memory-usage"))

	ref, ok := gc.As[item](child.Edge())
	require.True(t, ok, "object referenced from a live root must survive")
	assert.Equal(t, "child", ref.Get().name)
	_, ok = gc.As[item](temp.Edge())
	assert.False(t, ok, "unreferenced object must be reclaimed")

	r := root.Read()
	assert.Equal(t, "root", r.Get().name)
	require.Len(t, r.Get().refs, 1)
	assert.True(t, r.Get().refs[0].Same(child.Edge()))

	frame.Close()
	state.Dispose()
}

func TestMajorCollectionMonitoring(t *testing.T) {
	monitor := mocks.NewMockMonitor()
	cfg := gc.DefaultConfig()
	cfg.ThreadPoolSize = 2
	cfg.MajorHeapLiveness = 1
	state := gc.NewState(cfg, monitor)

	frame := state.NewFrame()
	keep := gc.Allocate(frame, item{name: "keep"})
	state.RequestMinorGC()
	state.Safepoint()
	require.Equal(t, gc.GenMajor, keep.Edge().Generation())

	state.RequestMajorGC()
	state.Safepoint()

	assert.Equal(t, 1, monitor.CountEvent("start-major-gc"), monitor.String())
	assert.Equal(t, 1, monitor.CountEvent("end-major-gc"), monitor.String())
	// a major cycle pauses the world twice: the initial root scan and the
	// final scan
	assert.Equal(t, 2, monitor.CountEvent("start-stw"), monitor.String())
	assert.Equal(t, 2, monitor.CountEvent("end-stw"), monitor.String())
	assert.False(t, state.Stopped())
	assert.Equal(t, gc.StageReady, state.Stage())

	major, minor := monitor.LastMemoryUsage()
	assert.Equal(t, keep.Edge().Size(), major)
	assert.Equal(t, uint64(0), minor)

	frame.Close()
	state.Dispose()
}
