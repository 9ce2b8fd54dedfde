package clock

import (
	"sync"
	"time"
)

// Source supplies the two raw readings the reconciled clock combines.
//
// Monotonic must never decrease but may stall while the host is suspended.
// Wall may jump in either direction.
type Source interface {
	Wall() time.Time
	Monotonic() time.Duration
}

// SystemSource reads the operating system clocks.
type SystemSource struct {
	origin time.Time
}

// NewSystemSource creates a source whose monotonic origin is now.
func NewSystemSource() *SystemSource {
	return &SystemSource{origin: time.Now()}
}

// Wall returns the current wall-clock time with Go's monotonic component
// stripped, so it behaves like a plain wall reading.
func (s *SystemSource) Wall() time.Time {
	return time.Now().Round(0)
}

// Monotonic returns the monotonic time elapsed since the source was created.
func (s *SystemSource) Monotonic() time.Duration {
	return time.Since(s.origin)
}

// ManualSource is a Source driven by hand. Simulation and tests use it to
// model suspension: advance Wall while holding Monotonic still.
//
// Thread-safety: all methods are safe for concurrent use.
type ManualSource struct {
	mu   sync.Mutex
	wall time.Time
	mono time.Duration
}

// NewManualSource creates a source at the given wall time and zero monotonic offset.
func NewManualSource(wall time.Time) *ManualSource {
	return &ManualSource{wall: wall}
}

func (m *ManualSource) Wall() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wall
}

func (m *ManualSource) Monotonic() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mono
}

// Advance moves both clocks forward by d.
func (m *ManualSource) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wall = m.wall.Add(d)
	m.mono += d
}

// Suspend moves only the wall clock forward by d, as a suspended host does.
func (m *ManualSource) Suspend(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wall = m.wall.Add(d)
}

// SetWall replaces the wall reading. Used to model wall-clock steps backward.
func (m *ManualSource) SetWall(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wall = t
}
