// Package counter is the smallest application that exercises every part of
// the dispatch protocol: a reducer-enqueued follow-up, an effect that
// dispatches recursively, and an enabling condition that can reject.
package counter

import (
	"github.com/roach88/redux/internal/canon"
	"github.com/roach88/redux/internal/clock"
	"github.com/roach88/redux/internal/redux"
	"github.com/roach88/redux/internal/trace"
)

// Name is the registry key.
const Name = "counter"

type State struct {
	Count int64
}

// Action is the closed set of counter actions.
type Action interface {
	redux.EnablingCondition[State]
	trace.Describer
}

// Increment adds one. The first increment enqueues Notify.
type Increment struct{ redux.AlwaysEnabled[State] }

// Notify re-dispatches Increment from its effects.
type Notify struct{ redux.AlwaysEnabled[State] }

// Add adds By, which must be positive.
type Add struct{ By int64 }

// Decrement subtracts one and is only enabled while Count is positive.
type Decrement struct{}

func (Increment) Kind() string         { return "Increment" }
func (Increment) Fields() canon.Object { return canon.Object{} }

func (Notify) Kind() string         { return "Notify" }
func (Notify) Fields() canon.Object { return canon.Object{} }

func (a Add) IsEnabled(State, clock.Timestamp) bool { return a.By > 0 }
func (Add) Kind() string                            { return "Add" }
func (a Add) Fields() canon.Object                  { return canon.Object{"by": canon.Int(a.By)} }

func (Decrement) IsEnabled(s State, _ clock.Timestamp) bool { return s.Count > 0 }
func (Decrement) Kind() string                              { return "Decrement" }
func (Decrement) Fields() canon.Object                      { return canon.Object{} }

// Reduce applies an action to the state.
func Reduce(s *State, a redux.ActionWithMeta[Action], d *redux.Dispatcher[Action]) {
	switch act := a.Action().(type) {
	case Increment:
		s.Count++
		if s.Count == 1 {
			d.Push(Notify{})
		}
	case Add:
		s.Count += act.By
	case Decrement:
		s.Count--
	case Notify:
	}
}

// Effects runs side effects for an action.
func Effects(store *redux.Store[State, redux.TimeService, Action], a redux.ActionWithMeta[Action]) {
	if _, ok := a.Action().(Notify); ok {
		store.Dispatch(Increment{})
	}
}
