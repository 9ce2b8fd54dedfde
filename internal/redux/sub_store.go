package redux

// SubStore presents a Store through a narrower state and action view, for
// state machines split across packages. Enabling checks run against the
// projected sub-state; accepted actions are lifted into the global action
// type and share the Store's id sequence, depth counter and queue.
type SubStore[S any, Svc TimeService, A EnablingCondition[S], Sub any, SubA EnablingCondition[Sub]] struct {
	store   *Store[S, Svc, A]
	project func(S) Sub
	lift    func(SubA) A
}

// NewSubStore creates a view of store. project must not retain or mutate
// what it is given.
func NewSubStore[S any, Svc TimeService, A EnablingCondition[S], Sub any, SubA EnablingCondition[Sub]](
	store *Store[S, Svc, A],
	project func(S) Sub,
	lift func(SubA) A,
) *SubStore[S, Svc, A, Sub, SubA] {
	return &SubStore[S, Svc, A, Sub, SubA]{store: store, project: project, lift: lift}
}

// State returns the projected sub-state.
func (ss *SubStore[S, Svc, A, Sub, SubA]) State() Sub {
	return ss.project(ss.store.state)
}

func (ss *SubStore[S, Svc, A, Sub, SubA]) Service() Svc {
	return ss.store.service
}

// Store returns the underlying global store.
func (ss *SubStore[S, Svc, A, Sub, SubA]) Store() *Store[S, Svc, A] {
	return ss.store
}

// Dispatch checks action against the sub-state and, if enabled, dispatches
// its lifted form through the global protocol.
func (ss *SubStore[S, Svc, A, Sub, SubA]) Dispatch(action SubA) bool {
	if !action.IsEnabled(ss.State(), ss.store.lastActionID.ts) {
		ss.store.reject(action)
		return false
	}
	ss.store.dispatchEnabled(ss.lift(action))
	return true
}
