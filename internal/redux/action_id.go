package redux

import (
	"encoding/json"
	"time"

	"github.com/roach88/redux/internal/clock"
)

// ActionID identifies one dispatched action. It is a Timestamp: the
// wall-clock time the action was processed, bumped forward when needed so
// that ids within a Store are strictly increasing.
//
// Only the Store allocates ids. ActionIDUnchecked exists for reading ids
// back out of logs.
type ActionID struct {
	ts clock.Timestamp
}

// ActionIDUnchecked wraps raw nanoseconds without any ordering guarantee.
func ActionIDUnchecked(nanos uint64) ActionID {
	return ActionID{ts: clock.Timestamp(nanos)}
}

// next allocates the id following prev at wall time now: max(prev+1, now).
// The raw clock alone could repeat or step backward; prev+1 alone would
// drift away from real time under bursts.
func (id ActionID) next(now clock.Timestamp) ActionID {
	if now > id.ts {
		return ActionID{ts: now}
	}
	return ActionID{ts: id.ts.SaturatingAdd(1)}
}

func (id ActionID) Timestamp() clock.Timestamp { return id.ts }

func (id ActionID) Nanos() uint64 { return uint64(id.ts) }

// Time converts the id to wall-clock time.
func (id ActionID) Time() time.Time { return id.ts.Time() }

// DurationSince returns id-earlier, zero if earlier is later.
func (id ActionID) DurationSince(earlier ActionID) time.Duration {
	return id.ts.SaturatingSub(earlier.ts)
}

func (id ActionID) Compare(o ActionID) int { return id.ts.Compare(o.ts) }

func (id ActionID) Before(o ActionID) bool { return id.ts < o.ts }

func (id ActionID) After(o ActionID) bool { return id.ts > o.ts }

func (id ActionID) String() string { return id.ts.String() }

// MarshalJSON encodes the id as a bare integer.
func (id ActionID) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint64(id.ts))
}

func (id *ActionID) UnmarshalJSON(data []byte) error {
	var n uint64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	id.ts = clock.Timestamp(n)
	return nil
}
