package redux

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/roach88/redux/internal/clock"
)

// Reducer computes the next state. It may enqueue follow-up actions on the
// dispatcher but must not dispatch or perform I/O.
type Reducer[S any, A any] func(state *S, action ActionWithMeta[A], dispatcher *Dispatcher[A])

// Effects runs after the reducer. It may read state, use the service, and
// dispatch further actions through the store. It must not mutate state
// except through dispatch.
type Effects[S any, Svc TimeService, A EnablingCondition[S]] func(store *Store[S, Svc, A], action ActionWithMeta[A])

// Store owns the state and runs the dispatch protocol.
//
// The state field is only handed out mutably to the reducer, from inside
// dispatchEnabled. Readers get a copy through State.
type Store[S any, Svc TimeService, A EnablingCondition[S]] struct {
	reducer Reducer[S, A]
	effects Effects[S, Svc, A]

	state   S
	service Svc

	anchor         *clock.Anchor
	recursionDepth uint32
	lastActionID   ActionID
	pending        Dispatcher[A]

	callbacks *Registry[A]
	observers []Observer
	logger    *slog.Logger
}

// New creates a Store.
//
// Unless WithAnchor is given, the Store converts monotonic readings through
// the process anchor, which the first Store constructed installs from
// (initialTime, service.MonotonicTime()). The first action id is strictly
// greater than initialTime.
func New[S any, Svc TimeService, A EnablingCondition[S]](
	reducer Reducer[S, A],
	effects Effects[S, Svc, A],
	service Svc,
	initialTime time.Time,
	initialState S,
	opts ...Option,
) *Store[S, Svc, A] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	anchor := o.anchor
	if anchor == nil {
		anchor = clock.ProcessAnchor(initialTime, service.MonotonicTime())
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	var callbacks *Registry[A]
	if o.callbacks != nil {
		reg, ok := o.callbacks.(*Registry[A])
		if !ok {
			panic(fmt.Sprintf("redux: callback registry %T does not produce %v actions", o.callbacks, reflect.TypeOf((*A)(nil)).Elem()))
		}
		callbacks = reg
	}

	if effects == nil {
		effects = func(*Store[S, Svc, A], ActionWithMeta[A]) {}
	}

	return &Store[S, Svc, A]{
		reducer:      reducer,
		effects:      effects,
		state:        initialState,
		service:      service,
		anchor:       anchor,
		lastActionID: ActionIDUnchecked(clock.TimestampFromTime(initialTime).Nanos()),
		callbacks:    callbacks,
		observers:    o.observers,
		logger:       logger,
	}
}

// State returns a copy of the current state. Maps and slices inside it are
// shared with the Store and must be treated as read-only.
func (s *Store[S, Svc, A]) State() S {
	return s.state
}

// Service returns the service handle.
func (s *Store[S, Svc, A]) Service() Svc {
	return s.service
}

// LastActionID returns the id of the most recently dispatched action, or the
// initial time if nothing has been dispatched.
func (s *Store[S, Svc, A]) LastActionID() ActionID {
	return s.lastActionID
}

// RecursionDepth returns the number of dispatch frames currently active.
func (s *Store[S, Svc, A]) RecursionDepth() uint32 {
	return s.recursionDepth
}

// Pending returns the number of queued actions not yet drained.
func (s *Store[S, Svc, A]) Pending() int {
	return s.pending.Len()
}

// Callbacks returns the registry installed with WithCallbacks, or nil.
func (s *Store[S, Svc, A]) Callbacks() *Registry[A] {
	return s.callbacks
}

// MonotonicToTime converts a monotonic reading to wall-clock time through
// the Store's anchor.
func (s *Store[S, Svc, A]) MonotonicToTime(i clock.Instant) clock.Timestamp {
	return s.anchor.ToTimestamp(i)
}

// Dispatch runs the enabling check and, if it passes, the full dispatch
// protocol. It reports whether the action ran. A rejected action leaves the
// state, the id counter and the queue untouched.
func (s *Store[S, Svc, A]) Dispatch(action A) bool {
	if !action.IsEnabled(s.state, s.lastActionID.ts) {
		s.reject(action)
		return false
	}
	s.dispatchEnabled(action)
	return true
}

func (s *Store[S, Svc, A]) reject(action any) {
	if s.logger.Enabled(context.Background(), slog.LevelDebug) {
		s.logger.Debug("action not enabled",
			"action", actionKind(action),
			"last_id", s.lastActionID,
			"depth", s.recursionDepth)
	}
	for _, obs := range s.observers {
		obs.ActionRejected(action, s.lastActionID)
	}
}

// dispatchEnabled allocates the id, reduces, runs effects, then drains the
// pending queue. The caller has already checked the enabling condition.
func (s *Store[S, Svc, A]) dispatchEnabled(action A) {
	now := s.anchor.ToTimestamp(s.service.MonotonicTime())
	prev := s.lastActionID
	s.lastActionID = prev.next(now)

	awm := ActionWithMeta[A]{
		meta: ActionMeta{
			id:    s.lastActionID,
			prev:  prev,
			depth: s.recursionDepth,
		},
		action: action,
	}

	s.logger.Debug("dispatch",
		"action", actionKind(action),
		"id", awm.meta.id,
		"prev", prev,
		"depth", awm.meta.depth)
	for _, obs := range s.observers {
		obs.ActionDispatched(awm.meta, action)
	}

	s.recursionDepth++
	defer func() { s.recursionDepth-- }()

	// Items behind this mark belong to enclosing frames. Inner frames only
	// ever add to the front and drain back down to their own mark, so the
	// mark stays valid for the whole frame.
	outer := s.pending.Len()

	var local Dispatcher[A]
	s.reducer(s.mutableState(), awm, &local)
	s.pending.pushFront(&local)

	s.effects(s, awm)

	for s.pending.Len() > outer {
		next, _ := s.pending.pop()
		s.Dispatch(next)
	}
}

// mutableState is only called from dispatchEnabled.
func (s *Store[S, Svc, A]) mutableState() *S {
	return &s.state
}

// Clone duplicates the state, service and bookkeeping. State and service
// values implementing Clone() are deep-copied through it; otherwise they
// are copied by assignment. The anchor, registry, observers and logger are
// shared with the original.
func (s *Store[S, Svc, A]) Clone() *Store[S, Svc, A] {
	c := *s
	c.state = cloneValue(s.state)
	c.service = cloneValue(s.service)
	c.pending = s.pending.clone()
	c.observers = append([]Observer(nil), s.observers...)
	return &c
}

func cloneValue[T any](v T) T {
	if c, ok := any(v).(interface{ Clone() T }); ok {
		return c.Clone()
	}
	return v
}

// actionKind names an action for logs: its Kind method if it has one,
// otherwise its Go type.
func actionKind(action any) string {
	if k, ok := action.(interface{ Kind() string }); ok {
		return k.Kind()
	}
	return fmt.Sprintf("%T", action)
}
