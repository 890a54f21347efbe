package monitoring

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMonitorPhases(t *testing.T) {
	m := NewLoggingMonitor("debug", map[string]string{"host": "test"})
	m.StartMinorGC(10)
	m.EndMinorGC(5)
	m.StartMajorGC(20)
	m.EndMajorGC(15)
	m.StartSTW()
	m.EndSTW()
	m.RecordMemoryUsage(15, 5)
}

func TestReportIncidentIDs(t *testing.T) {
	m := NewLoggingMonitor("error", nil)
	id1 := m.ReportWarning(errors.New("minor heap growing fast"))
	id2 := m.ReportError(errors.New("collector wedged"), "while sweeping")
	assert.NotEmpty(t, id1)
	assert.NotEmpty(t, id2)
	assert.NotEqual(t, id1, id2)
}

func TestCapturePanic(t *testing.T) {
	m := NewLoggingMonitor("error", nil)
	require.Panics(t, func() {
		m.CapturePanic(func() {
			panic("boom")
		})
	})
	// a function that returns normally is not disturbed
	m.CapturePanic(func() {})
}

func TestNewEntryUnsupportedLevel(t *testing.T) {
	require.Panics(t, func() {
		newEntry("verbose", nil)
	})
}
