// Package clock provides the time model used by the dispatch runtime.
//
// Two scales are kept apart:
//
//   - Instant is a reading on the process monotonic scale. It never runs
//     backward, even across host suspension, because Reconciled folds
//     wall-clock drift back into the monotonic reading.
//   - Timestamp is nanoseconds since the Unix epoch. Action ids are
//     Timestamps.
//
// An Anchor pairs one Instant with one Timestamp and converts between the
// two scales. The process anchor is written once (first writer wins) and
// read thereafter without locking.
package clock
