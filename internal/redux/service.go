package redux

import "github.com/roach88/redux/internal/clock"

// TimeService is the platform hook the Store reads time through.
// Simulated and replayed runs substitute a deterministic implementation.
type TimeService interface {
	MonotonicTime() clock.Instant
}

// SystemTime reads the process-wide reconciled clock. Embed it in a service
// struct to get the default behavior.
type SystemTime struct{}

func (SystemTime) MonotonicTime() clock.Instant {
	return clock.Now()
}
