package gc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderSet(t *testing.T) {
	var s headerSet
	a := &Header{}
	b := &Header{}

	assert.Equal(t, 0, s.size())
	assert.False(t, s.contains(a))

	assert.True(t, s.insert(a))
	assert.False(t, s.insert(a), "second insert must report already present")
	assert.True(t, s.insert(b))
	assert.Equal(t, 2, s.size())
	assert.True(t, s.contains(a))

	snapshot := s.snapshot()
	assert.Len(t, snapshot, 2)
	assert.Contains(t, snapshot, a)
	assert.Contains(t, snapshot, b)

	assert.True(t, s.remove(a))
	assert.False(t, s.remove(a), "second remove must report absent")
	assert.False(t, s.contains(a))
	assert.Equal(t, 1, s.size())
}

func TestHeaderSetTakeAll(t *testing.T) {
	var s headerSet
	a := &Header{}
	b := &Header{}
	s.insert(a)
	s.insert(b)

	taken := s.takeAll()
	require.Len(t, taken, 2)
	assert.Equal(t, 0, s.size())
	assert.Empty(t, s.takeAll())
}

func TestHeaderSetEach(t *testing.T) {
	var s headerSet
	s.insert(&Header{})
	s.insert(&Header{})
	s.insert(&Header{})

	count := 0
	s.each(func(*Header) bool {
		count++
		return count < 2 // stop early
	})
	assert.Equal(t, 2, count)

	s.reset()
	assert.Equal(t, 0, s.size())
}
