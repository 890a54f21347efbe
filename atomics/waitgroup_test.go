package atomics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitGroupWait(t *testing.T) {
	wg := WaitGroup{}
	require.NoError(t, wg.Add(2))
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	wg.Done()
	select {
	case <-done:
		assert.FailNow(t, "Wait returned before counter reached zero")
	default:
	}
	wg.Done()
	<-done
}

func TestWaitGroupDrain(t *testing.T) {
	wg := WaitGroup{}
	require.NoError(t, wg.Add(1))
	wg.Drain()
	assert.Equal(t, ErrWaitGroupDraining, wg.Add(1))
	// decrements are still allowed while draining
	require.NoError(t, wg.Add(-1))
	wg.Wait()
}

func TestWaitGroupWaitAndDrain(t *testing.T) {
	wg := WaitGroup{}
	require.NoError(t, wg.Add(1))
	go wg.Done()
	wg.WaitAndDrain()
	assert.Equal(t, ErrWaitGroupDraining, wg.Add(1))
}
