package redux

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/roach88/redux/internal/clock"
	"github.com/roach88/redux/internal/testutil"
)

var testStart = time.Unix(0, 1_700_000_000_000_000_000)

type testState struct {
	Count   int
	Log     []string
	Blocked bool
}

func (s testState) Clone() testState {
	s.Log = append([]string(nil), s.Log...)
	return s
}

type testAction interface {
	EnablingCondition[testState]
	Kind() string
}

// step is a scripted action: its reducer enqueues Enqueue, its effects
// dispatch Dispatch.
type step struct {
	AlwaysEnabled[testState]
	Name     string
	Enqueue  []testAction
	Dispatch []testAction
}

func (s step) Kind() string { return s.Name }

// gated is enabled until a block action runs.
type gated struct{ Name string }

func (g gated) IsEnabled(s testState, _ clock.Timestamp) bool { return !s.Blocked }
func (g gated) Kind() string                                  { return g.Name }

type block struct{ AlwaysEnabled[testState] }

func (block) Kind() string { return "block" }

// notBefore is enabled once the last action id has reached At.
type notBefore struct{ At clock.Timestamp }

func (n notBefore) IsEnabled(_ testState, now clock.Timestamp) bool { return now >= n.At }
func (notBefore) Kind() string                                    { return "not_before" }

type increment struct{ AlwaysEnabled[testState] }

func (increment) Kind() string { return "increment" }

type notify struct{ AlwaysEnabled[testState] }

func (notify) Kind() string { return "notify" }

type boom struct{ AlwaysEnabled[testState] }

func (boom) Kind() string { return "boom" }

func testReducer(state *testState, a ActionWithMeta[testAction], d *Dispatcher[testAction]) {
	state.Log = append(state.Log, a.Action().Kind())

	switch act := a.Action().(type) {
	case step:
		for _, q := range act.Enqueue {
			d.Push(q)
		}
	case block:
		state.Blocked = true
	case increment:
		state.Count++
		if state.Count == 1 {
			d.Push(notify{})
		}
	}
}

type record struct {
	kind string
	meta ActionMeta
}

type testStore = Store[testState, *testutil.SimulatedTime, testAction]

func newTestStore(t *testing.T, tick time.Duration, opts ...Option) (*testStore, *[]record) {
	t.Helper()

	var records []record
	effects := func(store *testStore, a ActionWithMeta[testAction]) {
		meta, action := a.Split()
		records = append(records, record{kind: action.Kind(), meta: meta})

		switch act := action.(type) {
		case step:
			for _, next := range act.Dispatch {
				store.Dispatch(next)
			}
		case notify:
			store.Dispatch(increment{})
		case boom:
			panic("boom")
		}
	}

	base := []Option{
		WithAnchor(clock.NewAnchor(clock.TimestampFromTime(testStart), clock.InstantOf(0))),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	store := New[testState, *testutil.SimulatedTime, testAction](testReducer, effects, testutil.NewSimulatedTime(tick), testStart, testState{}, append(base, opts...)...)
	return store, &records
}

func kinds(records []record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.kind
	}
	return out
}

func depths(records []record) []uint32 {
	out := make([]uint32, len(records))
	for i, r := range records {
		out[i] = r.meta.Depth()
	}
	return out
}

type countingObserver struct {
	dispatched []string
	rejected   []string
}

func (o *countingObserver) ActionDispatched(_ ActionMeta, action any) {
	o.dispatched = append(o.dispatched, actionKind(action))
}

func (o *countingObserver) ActionRejected(action any, _ ActionID) {
	o.rejected = append(o.rejected, actionKind(action))
}
