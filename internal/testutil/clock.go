package testutil

import (
	"sync"
	"time"

	"github.com/roach88/redux/internal/clock"
)

// SimulatedTime is a deterministic monotonic time service.
//
// Every MonotonicTime call advances the clock by step and returns the new
// reading, so the n-th read is n*step past the origin. Advance moves time
// forward without a read, modelling idle time between external events.
//
// With a zero step, repeated reads return the same instant, which exercises
// the id allocator's prev+1 path.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type SimulatedTime struct {
	mu   sync.Mutex
	now  time.Duration
	step time.Duration
}

// NewSimulatedTime creates a simulated clock at the origin.
func NewSimulatedTime(step time.Duration) *SimulatedTime {
	return &SimulatedTime{step: step}
}

// MonotonicTime advances by step and returns the new instant.
func (s *SimulatedTime) MonotonicTime() clock.Instant {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now += s.step
	return clock.InstantOf(s.now)
}

// Peek returns the current instant without advancing.
func (s *SimulatedTime) Peek() clock.Instant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clock.InstantOf(s.now)
}

// Advance moves the clock forward by d. Negative d is ignored.
func (s *SimulatedTime) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now += d
}

// SetStep changes the per-read increment.
func (s *SimulatedTime) SetStep(step time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = step
}

// Reset returns the clock to the origin, for reusing one service across runs.
func (s *SimulatedTime) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = 0
}

// Clone copies the current reading and step into an independent clock.
func (s *SimulatedTime) Clone() *SimulatedTime {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &SimulatedTime{now: s.now, step: s.step}
}
