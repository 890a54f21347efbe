package mocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMockMonitorRecords(t *testing.T) {
	m := NewMockMonitor()
	m.StartMinorGC(1)
	m.EndMinorGC(0)
	m.StartSTW()
	m.EndSTW()
	m.RecordMemoryUsage(7, 3)

	assert.Equal(t, []string{
		"start-minor-gc",
		"end-minor-gc",
		"start-stw",
		"end-stw",
		"record-memory-usage",
	}, m.Events())
	assert.Equal(t, 1, m.CountEvent("start-stw"))
	assert.True(t, m.HasEvent("end-minor-gc"))
	assert.False(t, m.HasEvent("start-major-gc"))

	major, minor := m.LastMemoryUsage()
	assert.Equal(t, uint64(7), major)
	assert.Equal(t, uint64(3), minor)
	assert.Contains(t, m.String(), "start-minor-gc")
}

func TestMockMonitorEmpty(t *testing.T) {
	m := NewMockMonitor()
	assert.Empty(t, m.Events())
	major, minor := m.LastMemoryUsage()
	assert.Equal(t, uint64(0), major)
	assert.Equal(t, uint64(0), minor)
}
