package clock

import (
	"sync"
	"time"
)

// Anchor pairs a wall-clock Timestamp with the monotonic Instant read at the
// same moment, and converts later instants to timestamps.
type Anchor struct {
	wall Timestamp
	mono Instant
}

// NewAnchor creates an anchor. Stores built for simulation or replay use a
// private anchor so that ids do not depend on when the process started.
func NewAnchor(wall Timestamp, mono Instant) *Anchor {
	return &Anchor{wall: wall, mono: mono}
}

func (a *Anchor) Wall() Timestamp { return a.wall }

func (a *Anchor) Mono() Instant { return a.mono }

// ToTimestamp converts i to wall + (i - mono), clamped to the Timestamp range.
func (a *Anchor) ToTimestamp(i Instant) Timestamp {
	return a.wall.SaturatingAdd(i.Sub(a.mono))
}

var (
	processOnce   sync.Once
	processAnchor *Anchor
)

// ProcessAnchor returns the process-wide anchor, initializing it from
// (wall, mono) on the first call. Later calls ignore their arguments and
// return the anchor the first caller installed.
func ProcessAnchor(wall time.Time, mono Instant) *Anchor {
	processOnce.Do(func() {
		processAnchor = NewAnchor(TimestampFromTime(wall), mono)
	})
	return processAnchor
}

// TimestampNow converts the reconciled clock's current reading through the
// process anchor, installing the anchor from the system clocks if needed.
func TimestampNow() Timestamp {
	now := Now()
	return ProcessAnchor(time.Now(), now).ToTimestamp(now)
}
