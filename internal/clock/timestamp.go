package clock

import (
	"math"
	"strconv"
	"time"
)

// Timestamp is a count of nanoseconds since the Unix epoch.
//
// Arithmetic never wraps: Checked* variants report overflow, Saturating*
// variants clamp at the range bounds.
type Timestamp uint64

// ZeroTimestamp is the Unix epoch.
const ZeroTimestamp Timestamp = 0

// MaxTimestamp is the largest representable Timestamp (~584 years after the epoch).
const MaxTimestamp Timestamp = math.MaxUint64

// TimestampFromTime converts a wall-clock time. Times before the epoch map to zero.
func TimestampFromTime(t time.Time) Timestamp {
	if t.Before(time.Unix(0, 0)) {
		return ZeroTimestamp
	}
	return Timestamp(t.UnixNano())
}

// Nanos returns the raw nanosecond count.
func (t Timestamp) Nanos() uint64 {
	return uint64(t)
}

// Time converts the timestamp to a UTC time.Time.
//
// Values beyond the range of time.Unix (year 2262) saturate at the largest
// time.Time that UnixNano can represent.
func (t Timestamp) Time() time.Time {
	if uint64(t) > math.MaxInt64 {
		return time.Unix(0, math.MaxInt64).UTC()
	}
	return time.Unix(0, int64(t)).UTC()
}

// CheckedAdd returns t+d, or false if the result leaves the Timestamp range.
func (t Timestamp) CheckedAdd(d time.Duration) (Timestamp, bool) {
	if d < 0 {
		// -MinInt64 wraps to itself, and its uint64 conversion is still 1<<63.
		neg := uint64(-d)
		if neg > uint64(t) {
			return 0, false
		}
		return t - Timestamp(neg), true
	}
	if uint64(d) > uint64(MaxTimestamp-t) {
		return 0, false
	}
	return t + Timestamp(d), true
}

// SaturatingAdd returns t+d clamped to [ZeroTimestamp, MaxTimestamp].
func (t Timestamp) SaturatingAdd(d time.Duration) Timestamp {
	if r, ok := t.CheckedAdd(d); ok {
		return r
	}
	if d < 0 {
		return ZeroTimestamp
	}
	return MaxTimestamp
}

// CheckedSub returns the duration t-earlier. It fails when earlier is after t
// or when the difference does not fit in a time.Duration.
func (t Timestamp) CheckedSub(earlier Timestamp) (time.Duration, bool) {
	if earlier > t {
		return 0, false
	}
	diff := uint64(t - earlier)
	if diff > math.MaxInt64 {
		return 0, false
	}
	return time.Duration(diff), true
}

// SaturatingSub returns t-earlier, zero when earlier is after t and
// math.MaxInt64 when the gap overflows a time.Duration.
func (t Timestamp) SaturatingSub(earlier Timestamp) time.Duration {
	if earlier > t {
		return 0
	}
	diff := uint64(t - earlier)
	if diff > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(diff)
}

// Compare returns -1, 0 or +1.
func (t Timestamp) Compare(o Timestamp) int {
	switch {
	case t < o:
		return -1
	case t > o:
		return 1
	default:
		return 0
	}
}

func (t Timestamp) Before(o Timestamp) bool { return t < o }

func (t Timestamp) After(o Timestamp) bool { return t > o }

// String renders the raw nanosecond count.
func (t Timestamp) String() string {
	return strconv.FormatUint(uint64(t), 10)
}
