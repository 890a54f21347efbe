package gc

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsTasks(t *testing.T) {
	p := newPool(3)
	var count int32
	for i := 0; i < 10; i++ {
		require.True(t, p.submit(func() {
			atomic.AddInt32(&count, 1)
		}))
	}
	p.wait()
	assert.Equal(t, int32(10), atomic.LoadInt32(&count))
	p.close()
}

func TestPoolRefusesWorkAfterClose(t *testing.T) {
	p := newPool(1)
	require.True(t, p.submit(func() {}))
	p.close()
	assert.False(t, p.submit(func() {}), "closed pool must refuse work")
}
