// Package mocks contains mock implementations for use in unit tests.
package mocks

import (
	"fmt"
	"sync"

	"github.com/vmkit/gengc/gc"
)

// MockMonitor implements gc.Monitor recording every callback, so tests
// can assert which collection phases ran and in what order.
type MockMonitor struct {
	m      sync.Mutex
	events []string
	usage  [][2]uint64
}

// NewMockMonitor returns a Monitor that records callbacks in memory.
func NewMockMonitor() *MockMonitor {
	return &MockMonitor{}
}

func (m *MockMonitor) record(event string) {
	m.m.Lock()
	defer m.m.Unlock()
	m.events = append(m.events, event)
}

// StartMinorGC records the callback.
func (m *MockMonitor) StartMinorGC(minorHeapSize uint64) {
	m.record("start-minor-gc")
}

// EndMinorGC records the callback.
func (m *MockMonitor) EndMinorGC(minorHeapSize uint64) {
	m.record("end-minor-gc")
}

// StartMajorGC records the callback.
func (m *MockMonitor) StartMajorGC(majorHeapSize uint64) {
	m.record("start-major-gc")
}

// EndMajorGC records the callback.
func (m *MockMonitor) EndMajorGC(majorHeapSize uint64) {
	m.record("end-major-gc")
}

// StartSTW records the callback.
func (m *MockMonitor) StartSTW() {
	m.record("start-stw")
}

// EndSTW records the callback.
func (m *MockMonitor) EndSTW() {
	m.record("end-stw")
}

// RecordMemoryUsage records the reported sizes.
func (m *MockMonitor) RecordMemoryUsage(majorHeapSize, minorHeapSize uint64) {
	m.m.Lock()
	defer m.m.Unlock()
	m.events = append(m.events, "record-memory-usage")
	m.usage = append(m.usage, [2]uint64{majorHeapSize, minorHeapSize})
}

// Events returns the recorded callback names in order.
func (m *MockMonitor) Events() []string {
	m.m.Lock()
	defer m.m.Unlock()
	return append([]string(nil), m.events...)
}

// CountEvent returns how many times the named callback was recorded.
func (m *MockMonitor) CountEvent(name string) int {
	m.m.Lock()
	defer m.m.Unlock()
	count := 0
	for _, e := range m.events {
		if e == name {
			count++
		}
	}
	return count
}

// HasEvent returns true if the named callback was recorded at least once.
func (m *MockMonitor) HasEvent(name string) bool {
	return m.CountEvent(name) > 0
}

// LastMemoryUsage returns the most recent usage report as
// (majorHeapSize, minorHeapSize).
func (m *MockMonitor) LastMemoryUsage() (uint64, uint64) {
	m.m.Lock()
	defer m.m.Unlock()
	if len(m.usage) == 0 {
		return 0, 0
	}
	last := m.usage[len(m.usage)-1]
	return last[0], last[1]
}

// String renders the recorded events, useful in test failure messages.
func (m *MockMonitor) String() string {
	return fmt.Sprint(m.Events())
}

var _ gc.Monitor = &MockMonitor{}
