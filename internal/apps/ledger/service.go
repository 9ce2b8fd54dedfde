package ledger

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/roach88/redux/internal/clock"
	"github.com/roach88/redux/internal/redux"
)

// AuditDueCallback is the registry key of the audit callback.
const AuditDueCallback = "ledger.audit_due"

// AuditArgs is the payload carried by a parked audit.
type AuditArgs struct {
	Label string          `json:"label"`
	Due   clock.Timestamp `json:"due"`
}

var auditDue = redux.NewCallback(AuditDueCallback, func(args AuditArgs) Action {
	return AuditDue(args)
})

// NewCallbacks assembles the registry the ledger store resolves parked
// callbacks against.
func NewCallbacks() *redux.Registry[Action] {
	reg := redux.NewRegistry[Action]()
	redux.MustRegister(reg, auditDue)
	return reg
}

// Timer is a parked callback. Both fields are JSON so that a timer carries
// no live function once parked.
type Timer struct {
	Due      clock.Timestamp `json:"due"`
	Callback json.RawMessage `json:"callback"`
	Args     json.RawMessage `json:"args"`
}

// Service is the ledger's platform handle: a time source plus a timer list.
type Service struct {
	redux.TimeService
	timers []Timer
}

func NewService(ts redux.TimeService) *Service {
	return &Service{TimeService: ts}
}

// parkCallback serializes cb and args and adds a timer due at the given
// time. Timers with equal due times fire in the order they were parked.
func parkCallback[T any](s *Service, due clock.Timestamp, cb redux.Callback[T, Action], args T) error {
	name, err := json.Marshal(cb)
	if err != nil {
		return fmt.Errorf("park %s: %w", cb.Name(), err)
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("park %s: %w", cb.Name(), err)
	}
	t := Timer{Due: due, Callback: name, Args: payload}
	i, _ := slices.BinarySearchFunc(s.timers, due, func(t Timer, due clock.Timestamp) int {
		if t.Due <= due {
			return -1
		}
		return 1
	})
	s.timers = slices.Insert(s.timers, i, t)
	return nil
}

// Park parks an audit callback.
func (s *Service) Park(due clock.Timestamp, cb redux.Callback[AuditArgs, Action], args AuditArgs) error {
	return parkCallback(s, due, cb, args)
}

// Timers returns the parked timers in firing order.
func (s *Service) Timers() []Timer {
	return slices.Clone(s.timers)
}

// TakeDue removes and returns every timer due at or before now.
func (s *Service) TakeDue(now clock.Timestamp) []Timer {
	n := 0
	for n < len(s.timers) && s.timers[n].Due <= now {
		n++
	}
	due := slices.Clone(s.timers[:n])
	s.timers = slices.Delete(s.timers, 0, n)
	return due
}

// Peek reads the time source without side effects when it supports that,
// as simulated clocks do, and falls back to MonotonicTime otherwise.
func (s *Service) Peek() clock.Instant {
	if p, ok := s.TimeService.(interface{ Peek() clock.Instant }); ok {
		return p.Peek()
	}
	return s.MonotonicTime()
}

// Clone copies the timer list. The time source is shared.
func (s *Service) Clone() *Service {
	return &Service{TimeService: s.TimeService, timers: slices.Clone(s.timers)}
}
