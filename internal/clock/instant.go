package clock

import (
	"math"
	"strconv"
	"time"
)

// Instant is a point on the process monotonic scale, in nanoseconds from an
// arbitrary per-source origin. Instants from different sources must not be
// compared.
type Instant struct {
	ns int64
}

// InstantOf builds an Instant d after the source origin. Simulated time
// services use it to produce deterministic readings.
func InstantOf(d time.Duration) Instant {
	return Instant{ns: int64(d)}
}

// SinceOrigin returns the offset of i from the source origin.
func (i Instant) SinceOrigin() time.Duration {
	return time.Duration(i.ns)
}

// Add returns i+d, saturating at the int64 bounds.
func (i Instant) Add(d time.Duration) Instant {
	sum := i.ns + int64(d)
	if d > 0 && sum < i.ns {
		return Instant{ns: math.MaxInt64}
	}
	if d < 0 && sum > i.ns {
		return Instant{ns: math.MinInt64}
	}
	return Instant{ns: sum}
}

// Sub returns i-earlier. Negative when earlier is after i.
func (i Instant) Sub(earlier Instant) time.Duration {
	return time.Duration(i.ns - earlier.ns)
}

// CheckedDurationSince returns i-earlier, or false when earlier is after i.
func (i Instant) CheckedDurationSince(earlier Instant) (time.Duration, bool) {
	if i.ns < earlier.ns {
		return 0, false
	}
	return time.Duration(i.ns - earlier.ns), true
}

// SaturatingDurationSince returns i-earlier, or zero when earlier is after i.
func (i Instant) SaturatingDurationSince(earlier Instant) time.Duration {
	d, _ := i.CheckedDurationSince(earlier)
	return d
}

func (i Instant) Compare(o Instant) int {
	switch {
	case i.ns < o.ns:
		return -1
	case i.ns > o.ns:
		return 1
	default:
		return 0
	}
}

func (i Instant) Before(o Instant) bool { return i.ns < o.ns }

func (i Instant) After(o Instant) bool { return i.ns > o.ns }

func (i Instant) Equal(o Instant) bool { return i.ns == o.ns }

func (i Instant) String() string {
	return "mono+" + strconv.FormatInt(i.ns, 10) + "ns"
}
