package trace

import (
	"sync"

	"github.com/roach88/redux/internal/redux"
)

// Recorder accumulates records in dispatch order.
//
// Thread-safety: Recorder is safe for concurrent use, though a Store only
// ever appends from its own goroutine.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Add appends a record.
func (r *Recorder) Add(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// Records returns a copy of the log. Never nil.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Wrap returns effects that log each action before running next. Effects
// run in dispatch order, so the log order is the id order. next may be nil.
func Wrap[S any, Svc redux.TimeService, A redux.EnablingCondition[S]](
	rec *Recorder,
	next redux.Effects[S, Svc, A],
) redux.Effects[S, Svc, A] {
	return func(store *redux.Store[S, Svc, A], action redux.ActionWithMeta[A]) {
		meta, a := action.Split()
		rec.Add(FromAction(meta, a))
		if next != nil {
			next(store, action)
		}
	}
}
