package redux

import "github.com/roach88/redux/internal/clock"

// EnablingCondition gates dispatch. IsEnabled runs immediately before an id
// is allocated, against the current state and the last allocated id read as
// a time. It must not have side effects.
//
// The state is passed by value. For states holding maps or slices the
// predicate must treat them as read-only.
type EnablingCondition[S any] interface {
	IsEnabled(state S, time clock.Timestamp) bool
}

// AlwaysEnabled can be embedded in action types that impose no precondition.
type AlwaysEnabled[S any] struct{}

func (AlwaysEnabled[S]) IsEnabled(S, clock.Timestamp) bool { return true }
