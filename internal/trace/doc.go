// Package trace copies dispatched actions out of a Store into a flat log
// and works with that log afterward.
//
// The runtime does not keep actions once effects return. A Recorder wraps
// an Effects function and appends one Record per action, in dispatch order.
// Because every Record carries the id of the action before it, the order
// can be rebuilt from an unordered log (Reconstruct) and checked
// (Verify). Digest gives a content hash for comparing replays.
package trace
