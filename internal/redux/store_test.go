package redux

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/redux/internal/clock"
	"github.com/roach88/redux/internal/testutil"
)

func startID() ActionID {
	return ActionIDUnchecked(clock.TimestampFromTime(testStart).Nanos())
}

func TestStore_New(t *testing.T) {
	store, _ := newTestStore(t, time.Microsecond)

	assert.Equal(t, startID(), store.LastActionID(), "initial id is the initial time")
	assert.Equal(t, uint32(0), store.RecursionDepth())
	assert.Equal(t, 0, store.Pending())
	assert.Equal(t, testState{}, store.State())
	assert.NotNil(t, store.Service())
}

func TestStore_Dispatch_IDsTrackTime(t *testing.T) {
	store, records := newTestStore(t, time.Microsecond)

	require.True(t, store.Dispatch(step{Name: "a"}))
	require.True(t, store.Dispatch(step{Name: "b"}))

	rs := *records
	require.Len(t, rs, 2)
	base := startID().Nanos()
	assert.Equal(t, base+1_000, rs[0].meta.ID().Nanos())
	assert.Equal(t, base+2_000, rs[1].meta.ID().Nanos())
	assert.Equal(t, startID(), rs[0].meta.Prev())
	assert.Equal(t, rs[0].meta.ID(), rs[1].meta.Prev())
}

func TestStore_Dispatch_MonotonicUniquenessWithinOneTick(t *testing.T) {
	// Zero step: every dispatch sees the same clock reading.
	store, records := newTestStore(t, 0)

	const n = 1000
	for i := 0; i < n; i++ {
		require.True(t, store.Dispatch(step{Name: "tick"}))
	}

	rs := *records
	require.Len(t, rs, n)
	seen := make(map[ActionID]bool, n)
	for i, r := range rs {
		assert.False(t, seen[r.meta.ID()], "id %s allocated twice", r.meta.ID())
		seen[r.meta.ID()] = true
		if i > 0 {
			assert.True(t, r.meta.ID().After(rs[i-1].meta.ID()))
		}
	}
	assert.Equal(t, startID().Nanos()+n, store.LastActionID().Nanos())
}

// scriptedTime replays fixed monotonic readings, repeating the last one.
type scriptedTime struct {
	readings []clock.Instant
	i        int
}

func (s *scriptedTime) MonotonicTime() clock.Instant {
	r := s.readings[s.i]
	if s.i < len(s.readings)-1 {
		s.i++
	}
	return r
}

func TestStore_Dispatch_ClockStepsBackward(t *testing.T) {
	svc := &scriptedTime{readings: []clock.Instant{
		clock.InstantOf(5_000),
		clock.InstantOf(3_000),
		clock.InstantOf(3_000),
		clock.InstantOf(9_000),
	}}
	var ids []ActionID
	store := New[testState, *scriptedTime, testAction](
		testReducer,
		func(_ *Store[testState, *scriptedTime, testAction], a ActionWithMeta[testAction]) {
			ids = append(ids, a.ID())
		},
		svc, testStart, testState{},
		WithAnchor(clock.NewAnchor(clock.TimestampFromTime(testStart), clock.InstantOf(0))),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	for i := 0; i < 4; i++ {
		store.Dispatch(step{Name: "s"})
	}

	base := startID().Nanos()
	require.Len(t, ids, 4)
	assert.Equal(t, base+5_000, ids[0].Nanos())
	assert.Equal(t, base+5_001, ids[1].Nanos(), "backward reading falls back to prev+1")
	assert.Equal(t, base+5_002, ids[2].Nanos())
	assert.Equal(t, base+9_000, ids[3].Nanos(), "resumes tracking time once it advances")
}

func TestStore_Dispatch_DisabledIsNoOp(t *testing.T) {
	obs := &countingObserver{}
	store, records := newTestStore(t, time.Microsecond, WithObserver(obs))

	require.True(t, store.Dispatch(block{}))
	before := store.State()
	lastID := store.LastActionID()

	assert.False(t, store.Dispatch(gated{Name: "g"}))

	assert.Equal(t, before, store.State())
	assert.Equal(t, lastID, store.LastActionID(), "no id consumed")
	assert.Equal(t, 0, store.Pending())
	assert.Len(t, *records, 1)
	assert.Equal(t, []string{"g"}, obs.rejected)
	assert.Equal(t, []string{"block"}, obs.dispatched)
}

// queueWatcher records the queue length whenever an action is rejected.
type queueWatcher struct {
	store    *testStore
	atReject []int
}

func (w *queueWatcher) ActionDispatched(ActionMeta, any) {}

func (w *queueWatcher) ActionRejected(any, ActionID) {
	w.atReject = append(w.atReject, w.store.Pending())
}

func TestStore_Dispatch_DisabledLeavesQueueUntouched(t *testing.T) {
	watcher := &queueWatcher{}
	store, records := newTestStore(t, time.Microsecond, WithObserver(watcher))
	watcher.store = store

	require.True(t, store.Dispatch(block{}))

	// a's reducer queues x and y; its effects then dispatch a disabled
	// action while both are still pending.
	require.True(t, store.Dispatch(step{
		Name:     "a",
		Enqueue:  []testAction{step{Name: "x"}, step{Name: "y"}},
		Dispatch: []testAction{gated{Name: "g"}},
	}))

	assert.Equal(t, []int{2}, watcher.atReject)
	assert.Equal(t, []string{"block", "a", "x", "y"}, kinds(*records))
	assert.Equal(t, []uint32{0, 0, 1, 1}, depths(*records))
	assert.Equal(t, 0, store.Pending())
}

func TestStore_Dispatch_EnablingSeesLastIDAsTime(t *testing.T) {
	store, _ := newTestStore(t, time.Microsecond)
	at := clock.TimestampFromTime(testStart) + 2_000

	assert.False(t, store.Dispatch(notBefore{At: at}))
	store.Dispatch(step{Name: "a"})
	assert.False(t, store.Dispatch(notBefore{At: at}), "last id is start+1000")
	store.Dispatch(step{Name: "b"})
	assert.True(t, store.Dispatch(notBefore{At: at}))
}

func TestStore_FrontMerge(t *testing.T) {
	store, records := newTestStore(t, time.Microsecond)

	// P queues Z, then its effects dispatch A, whose reducer queues X, Y.
	a := step{Name: "A", Enqueue: []testAction{step{Name: "X"}, step{Name: "Y"}}}
	p := step{Name: "P", Enqueue: []testAction{step{Name: "Z"}}, Dispatch: []testAction{a}}

	require.True(t, store.Dispatch(p))

	assert.Equal(t, []string{"P", "A", "X", "Y", "Z"}, kinds(*records))
	assert.Equal(t, []uint32{0, 1, 2, 2, 1}, depths(*records))
	assert.Equal(t, 0, store.Pending(), "queue drained within the call")
}

func TestStore_RecursivePrecedence(t *testing.T) {
	store, records := newTestStore(t, time.Microsecond)

	b := step{Name: "B", Enqueue: []testAction{step{Name: "B1"}}}
	a := step{Name: "A", Enqueue: []testAction{step{Name: "Q"}}, Dispatch: []testAction{b}}

	require.True(t, store.Dispatch(a))

	assert.Equal(t, []string{"A", "B", "B1", "Q"}, kinds(*records))
	// Q is drained by A's frame after B returns, at A's depth + 1.
	assert.Equal(t, []uint32{0, 1, 2, 1}, depths(*records))
}

func TestStore_DepthFirstDrain(t *testing.T) {
	store, records := newTestStore(t, time.Microsecond)

	x := step{Name: "X", Enqueue: []testAction{step{Name: "W"}}}
	a := step{Name: "A", Enqueue: []testAction{x, step{Name: "Y"}}}

	store.Dispatch(a)

	assert.Equal(t, []string{"A", "X", "W", "Y"}, kinds(*records))
	assert.Equal(t, []uint32{0, 1, 2, 1}, depths(*records))
}

func TestStore_DrainDropsActionsDisabledInTheMeantime(t *testing.T) {
	obs := &countingObserver{}
	store, records := newTestStore(t, time.Microsecond, WithObserver(obs))

	store.Dispatch(step{Name: "P", Enqueue: []testAction{block{}, gated{Name: "G"}, step{Name: "after"}}})

	assert.Equal(t, []string{"P", "block", "after"}, kinds(*records))
	assert.Equal(t, []string{"G"}, obs.rejected)
	assert.Equal(t, 0, store.Pending())
}

func TestStore_EndToEndCounter(t *testing.T) {
	store, records := newTestStore(t, time.Microsecond)

	require.True(t, store.Dispatch(increment{}))

	assert.Equal(t, 2, store.State().Count)
	assert.Equal(t, []string{"increment", "notify", "increment"}, kinds(*records))
	assert.Equal(t, []uint32{0, 1, 2}, depths(*records))

	rs := *records
	assert.True(t, rs[1].meta.ID().After(rs[0].meta.ID()))
	assert.True(t, rs[2].meta.ID().After(rs[1].meta.ID()))
}

func TestStore_CausalChainReconstruction(t *testing.T) {
	store, records := newTestStore(t, 0)

	store.Dispatch(step{
		Name:     "root",
		Enqueue:  []testAction{step{Name: "q1"}, step{Name: "q2"}},
		Dispatch: []testAction{increment{}, step{Name: "direct"}},
	})
	store.Dispatch(step{Name: "second"})

	byID := make(map[ActionID]record)
	for _, r := range *records {
		byID[r.meta.ID()] = r
	}

	// Walk prev links from the last id back to the initial id.
	var chain []string
	for id := store.LastActionID(); id != startID(); {
		r, ok := byID[id]
		require.True(t, ok, "dangling prev %s", id)
		chain = append([]string{r.kind}, chain...)
		id = r.meta.Prev()
	}

	assert.Equal(t, kinds(*records), chain)
}

func TestStore_DepthRestoredAfterPanic(t *testing.T) {
	store, _ := newTestStore(t, time.Microsecond)

	assert.Panics(t, func() {
		store.Dispatch(step{Name: "outer", Dispatch: []testAction{boom{}}})
	})
	assert.Equal(t, uint32(0), store.RecursionDepth())
}

func TestStore_MonotonicToTime(t *testing.T) {
	store, _ := newTestStore(t, time.Microsecond)

	got := store.MonotonicToTime(clock.InstantOf(time.Second))
	assert.Equal(t, clock.TimestampFromTime(testStart.Add(time.Second)), got)
}

func TestStore_Clone(t *testing.T) {
	store, _ := newTestStore(t, time.Microsecond)
	store.Dispatch(step{Name: "a"})

	c := store.Clone()
	c.Dispatch(step{Name: "only-in-clone"})

	assert.Equal(t, []string{"a"}, store.State().Log, "original unaffected")
	assert.Equal(t, []string{"a", "only-in-clone"}, c.State().Log)
	assert.NotSame(t, store.Service(), c.Service(), "service cloned")
	assert.Same(t, store.anchor, c.anchor, "anchor shared")
	assert.True(t, c.LastActionID().After(store.LastActionID()))
}

func TestStore_ProcessAnchorByDefault(t *testing.T) {
	svc := testutil.NewSimulatedTime(time.Microsecond)
	store := New[testState, *testutil.SimulatedTime, testAction](
		testReducer, nil, svc, testStart, testState{},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	require.True(t, store.Dispatch(step{Name: "a"}))
	require.True(t, store.Dispatch(step{Name: "b"}))

	assert.True(t, store.LastActionID().After(startID()))
	assert.Equal(t, []string{"a", "b"}, store.State().Log)
}

func TestStore_WithCallbacksTypeMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		newTestStore(t, 0, WithCallbacks(NewRegistry[string]()))
	})
}
