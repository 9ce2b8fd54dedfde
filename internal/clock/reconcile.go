package clock

import (
	"sync"
	"time"
)

// Reconciled is a monotonic clock that corrects for suspension drift.
//
// On first use it records (wall0, mono0). Every reading compares wall and
// monotonic elapsed time; when wall time has run ahead of monotonic time
// plus the accumulated drift, the drift grows to cover the gap. The returned
// Instant is the monotonic reading plus drift, so it never runs backward and
// jumps forward after a suspension instead of compressing the gap.
//
// Thread-safety: Reconciled is safe for concurrent use.
type Reconciled struct {
	src Source

	mu      sync.Mutex
	started bool
	wall0   time.Time
	mono0   time.Duration
	drift   time.Duration
}

// NewReconciled creates a reconciled clock over src. Anchoring happens on the
// first call to Now, not here.
func NewReconciled(src Source) *Reconciled {
	return &Reconciled{src: src}
}

// Now returns the current drift-corrected instant.
func (r *Reconciled) Now() Instant {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		r.wall0 = r.src.Wall()
		r.mono0 = r.src.Monotonic()
		r.started = true
	}

	// Wall steps backward are ignored: only forward gaps count as drift.
	wallElapsed := r.src.Wall().Sub(r.wall0)
	if wallElapsed < 0 {
		wallElapsed = 0
	}
	monoNow := r.src.Monotonic()
	monoElapsed := monoNow - r.mono0

	if wallElapsed > monoElapsed+r.drift {
		r.drift = wallElapsed - monoElapsed
	}

	return InstantOf(monoNow + r.drift)
}

// Drift returns the correction accumulated so far.
func (r *Reconciled) Drift() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drift
}

var defaultClock = sync.OnceValue(func() *Reconciled {
	return NewReconciled(NewSystemSource())
})

// Now reads the process-wide reconciled clock backed by the system clocks.
func Now() Instant {
	return defaultClock().Now()
}
