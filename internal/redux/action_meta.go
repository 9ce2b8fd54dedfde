package redux

import (
	"encoding/json"
	"time"

	"github.com/roach88/redux/internal/clock"
)

// ActionMeta is attached to an action when it is dispatched and never
// changes afterward.
//
// Prev is the id of the action dispatched immediately before this one in
// global order. Following prev links from the newest action back to the
// Store's initial id reproduces the full dispatch order.
type ActionMeta struct {
	id    ActionID
	prev  ActionID
	depth uint32
}

func (m ActionMeta) ID() ActionID { return m.id }

func (m ActionMeta) Prev() ActionID { return m.prev }

// Depth is the number of dispatch frames that were active when the action
// ran. Top-level dispatches have depth 0.
func (m ActionMeta) Depth() uint32 { return m.depth }

func (m ActionMeta) Time() clock.Timestamp { return m.id.ts }

func (m ActionMeta) SysTime() time.Time { return m.id.Time() }

func (m ActionMeta) TimeAsNanos() uint64 { return m.id.Nanos() }

func (m ActionMeta) DurationSinceEpoch() time.Duration {
	return m.id.ts.SaturatingSub(clock.ZeroTimestamp)
}

// DurationSince returns how long after other this action ran.
func (m ActionMeta) DurationSince(other ActionMeta) time.Duration {
	return m.id.DurationSince(other.id)
}

type actionMetaJSON struct {
	ID    ActionID `json:"id"`
	Prev  ActionID `json:"prev"`
	Depth uint32   `json:"depth"`
}

func (m ActionMeta) MarshalJSON() ([]byte, error) {
	return json.Marshal(actionMetaJSON{ID: m.id, Prev: m.prev, Depth: m.depth})
}

// UnmarshalJSON restores metadata read back from an action log.
func (m *ActionMeta) UnmarshalJSON(data []byte) error {
	var raw actionMetaJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = ActionMeta{id: raw.ID, prev: raw.Prev, depth: raw.Depth}
	return nil
}

// ActionWithMeta pairs an action with the metadata it was dispatched with.
// The runtime does not retain it after effects return; code that needs a
// log copies it out from effects.
type ActionWithMeta[A any] struct {
	meta   ActionMeta
	action A
}

func (a ActionWithMeta[A]) Meta() ActionMeta { return a.meta }

func (a ActionWithMeta[A]) Action() A { return a.action }

func (a ActionWithMeta[A]) ID() ActionID { return a.meta.id }

func (a ActionWithMeta[A]) Depth() uint32 { return a.meta.depth }

func (a ActionWithMeta[A]) Time() clock.Timestamp { return a.meta.Time() }

// Split returns the metadata and the action.
func (a ActionWithMeta[A]) Split() (ActionMeta, A) {
	return a.meta, a.action
}
