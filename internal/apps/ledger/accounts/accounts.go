// Package accounts is the balance sub-state of the ledger. It knows nothing
// about the ledger; the ledger embeds its State and lifts its actions.
package accounts

import (
	"maps"

	"github.com/roach88/redux/internal/canon"
	"github.com/roach88/redux/internal/clock"
	"github.com/roach88/redux/internal/redux"
	"github.com/roach88/redux/internal/trace"
)

type State struct {
	Balances map[string]int64
}

func NewState() State {
	return State{Balances: make(map[string]int64)}
}

func (s State) Clone() State {
	return State{Balances: maps.Clone(s.Balances)}
}

// Has reports whether the account is open.
func (s State) Has(account string) bool {
	_, ok := s.Balances[account]
	return ok
}

// Value returns balances as a canonical object.
func (s State) Value() canon.Object {
	out := make(canon.Object, len(s.Balances))
	for k, v := range s.Balances {
		out[k] = canon.Int(v)
	}
	return out
}

// Action is the closed set of account actions.
type Action interface {
	redux.EnablingCondition[State]
	trace.Describer
}

// Open creates an account with a zero balance.
type Open struct {
	Account string
}

type Deposit struct {
	Account string
	Amount  int64
}

// Withdraw is enabled only when the balance covers Amount.
type Withdraw struct {
	Account string
	Amount  int64
}

func (a Open) IsEnabled(s State, _ clock.Timestamp) bool {
	return a.Account != "" && !s.Has(a.Account)
}
func (Open) Kind() string           { return "Open" }
func (a Open) Fields() canon.Object { return canon.Object{"account": canon.String(a.Account)} }

func (a Deposit) IsEnabled(s State, _ clock.Timestamp) bool {
	return a.Amount > 0 && s.Has(a.Account)
}
func (Deposit) Kind() string           { return "Deposit" }
func (a Deposit) Fields() canon.Object { return movement(a.Account, a.Amount) }

func (a Withdraw) IsEnabled(s State, _ clock.Timestamp) bool {
	return a.Amount > 0 && s.Has(a.Account) && s.Balances[a.Account] >= a.Amount
}
func (Withdraw) Kind() string           { return "Withdraw" }
func (a Withdraw) Fields() canon.Object { return movement(a.Account, a.Amount) }

func movement(account string, amount int64) canon.Object {
	return canon.Object{"account": canon.String(account), "amount": canon.Int(amount)}
}

// Change is a balance update produced by Apply.
type Change struct {
	Account string
	Balance int64
}

// Apply mutates s. It returns the balance change, if any, so that the
// enclosing reducer can react to it.
func Apply(s *State, a Action) (Change, bool) {
	if s.Balances == nil {
		s.Balances = make(map[string]int64)
	}
	switch act := a.(type) {
	case Open:
		s.Balances[act.Account] = 0
		return Change{}, false
	case Deposit:
		s.Balances[act.Account] += act.Amount
		return Change{Account: act.Account, Balance: s.Balances[act.Account]}, true
	case Withdraw:
		s.Balances[act.Account] -= act.Amount
		return Change{Account: act.Account, Balance: s.Balances[act.Account]}, true
	}
	return Change{}, false
}
