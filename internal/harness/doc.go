// Package harness runs YAML scenarios against the example applications and
// checks the resulting action log.
//
// # Scenario Format
//
//	name: counter_cascade
//	description: "Increment enqueues Notify, whose effects increment again"
//	app: counter
//	run_id: counter-cascade          # optional
//	clock:                           # optional
//	  start: "2024-01-01T00:00:00Z"  # wall time of the store's initial id
//	  step: 1000                     # ns the simulated clock advances per read
//	steps:
//	  - dispatch: Increment
//	    args: {}
//	    expect: dispatched           # or rejected; omitted means unchecked
//	  - advance: 5000                # move the simulated clock forward
//	assertions:
//	  - type: trace_order
//	    actions: [Increment, Notify, Increment]
//	  - type: final_state
//	    expect: { count: 2 }
//
// Scenario files are checked against a CUE schema before they are decoded,
// then decoded strictly so that misspelled keys fail.
//
// # Assertion Types
//
//   - trace_contains: an action of the given kind with matching fields
//   - trace_order: the given kinds appear as a subsequence of the log
//   - trace_count: a kind appears exactly count times
//   - final_state: the application state contains the expected values
//   - depth: the nth action of a kind ran at the given depth
//   - chain_intact: prev links rebuild the log in dispatch order
//   - ids_increasing: ids strictly increase along the log
//
// # Determinism
//
// Each run gets a fresh application whose store reads a simulated clock
// and converts it through its own anchor at (start, 0). The same scenario
// therefore produces the same ids, and the same trace digest, every time.
// After every step the harness polls the application so that timers that
// came due are fed back as actions.
package harness
