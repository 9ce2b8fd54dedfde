// Package redux is a deterministic, single-threaded dispatch runtime.
//
// A Store owns an application state and applies actions to it in two
// phases: the Reducer mutates state and may enqueue follow-up actions, then
// Effects run and may dispatch further actions recursively. Every dispatched
// action receives an ActionMeta whose id is strictly greater than every id
// before it, whose prev points at the action dispatched immediately before,
// and whose depth counts the dispatch frames active when it ran.
//
// Ordering rules:
//
//   - Actions a reducer enqueues run after the current action's effects and
//     before anything already pending from an enclosing frame.
//   - Actions dispatched directly from effects, with all their cascades,
//     finish before the current frame drains its queue.
//   - A queued action is re-checked against the state at drain time and
//     dropped silently if it is no longer enabled.
//
// The Store is not safe for concurrent use. Reentrancy happens only through
// effects calling Dispatch. Non-deterministic inputs (timers, I/O results)
// re-enter the Store as ordinary actions, optionally through a Callback
// resolved against an explicitly assembled Registry.
package redux
