package trace

import (
	"errors"
	"fmt"
	"sort"
)

// ChainError reports a broken prev chain.
type ChainError struct {
	// Index is the position of the offending record, or -1.
	Index int

	// ID of the offending record, if known.
	ID uint64

	Message string
}

func (e *ChainError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("chain broken at %d (id=%d): %s", e.Index, e.ID, e.Message)
	}
	return "chain broken: " + e.Message
}

// IsChainError reports whether err is a ChainError.
func IsChainError(err error) bool {
	var ce *ChainError
	return errors.As(err, &ce)
}

// Verify checks a log in dispatch order: the first record's prev is origin,
// each later record's prev is the id before it, and ids strictly increase.
func Verify(records []Record, origin uint64) error {
	prev := origin
	for i, r := range records {
		if r.Prev != prev {
			return &ChainError{Index: i, ID: r.ID, Message: fmt.Sprintf("prev=%d, expected %d", r.Prev, prev)}
		}
		if r.ID <= prev {
			return &ChainError{Index: i, ID: r.ID, Message: fmt.Sprintf("id not greater than prev %d", prev)}
		}
		prev = r.ID
	}
	return nil
}

// Reconstruct rebuilds dispatch order from records in any order by
// following prev links back from the newest record.
func Reconstruct(records []Record) ([]Record, error) {
	if len(records) == 0 {
		return []Record{}, nil
	}

	byID := make(map[uint64]Record, len(records))
	isPrev := make(map[uint64]bool, len(records))
	for _, r := range records {
		if _, dup := byID[r.ID]; dup {
			return nil, &ChainError{Index: -1, ID: r.ID, Message: "duplicate id"}
		}
		byID[r.ID] = r
		isPrev[r.Prev] = true
	}

	var heads []uint64
	for id := range byID {
		if !isPrev[id] {
			heads = append(heads, id)
		}
	}
	if len(heads) != 1 {
		sort.Slice(heads, func(i, j int) bool { return heads[i] < heads[j] })
		return nil, &ChainError{Index: -1, Message: fmt.Sprintf("expected one newest record, found %d %v", len(heads), heads)}
	}

	out := make([]Record, len(records))
	id := heads[0]
	for i := len(records) - 1; i >= 0; i-- {
		r, ok := byID[id]
		if !ok {
			return nil, &ChainError{Index: -1, ID: id, Message: "missing record"}
		}
		out[i] = r
		id = r.Prev
	}
	if _, ok := byID[id]; ok {
		return nil, &ChainError{Index: -1, ID: id, Message: "chain loops"}
	}
	return out, nil
}

// Origin returns the prev of the oldest record in a log in dispatch order,
// which is the Store's initial id.
func Origin(records []Record) (uint64, bool) {
	if len(records) == 0 {
		return 0, false
	}
	return records[0].Prev, true
}
