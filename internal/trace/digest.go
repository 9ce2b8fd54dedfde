package trace

import (
	"github.com/roach88/redux/internal/canon"
)

// Digest hashes the canonical encoding of a log. Two runs with equal
// digests dispatched the same actions with the same ids, in the same order,
// at the same depths.
func Digest(records []Record) (string, error) {
	arr := make(canon.Array, len(records))
	for i, r := range records {
		arr[i] = r.Value()
	}
	return canon.Digest(canon.DomainTrace, arr)
}
