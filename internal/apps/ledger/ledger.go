// Package ledger is a small bank ledger built on the redux runtime.
//
// Account balances live in the accounts sub-state and are changed through a
// SubStore, so their enabling checks see only that projection. Transfers
// are split by the reducer into a queued Withdraw and Deposit, and every
// balance change queues a Notify. Audits are scheduled on the service's
// timer list as serialized callbacks and come back as AuditDue actions when
// Poll finds them due.
package ledger

import (
	"slices"
	"time"

	"github.com/roach88/redux/internal/apps/ledger/accounts"
	"github.com/roach88/redux/internal/canon"
	"github.com/roach88/redux/internal/clock"
	"github.com/roach88/redux/internal/redux"
	"github.com/roach88/redux/internal/trace"
)

type State struct {
	Accounts accounts.State
	Notices  []Notice
	Audits   []Audit
}

// Notice records a balance change observed by the ledger.
type Notice struct {
	Account string
	Balance int64
}

// Audit is scheduled by ScheduleAudit and completed by AuditDue.
// Ran is zero until the audit fires.
type Audit struct {
	Label string
	Due   clock.Timestamp
	Ran   uint64
	Total int64
}

func NewState() State {
	return State{Accounts: accounts.NewState()}
}

func (s State) Clone() State {
	return State{
		Accounts: s.Accounts.Clone(),
		Notices:  slices.Clone(s.Notices),
		Audits:   slices.Clone(s.Audits),
	}
}

func (s State) audit(label string) (int, bool) {
	i := slices.IndexFunc(s.Audits, func(a Audit) bool { return a.Label == label })
	return i, i >= 0
}

// Value renders the state as a canonical object.
func (s State) Value() canon.Object {
	notices := make(canon.Array, len(s.Notices))
	for i, n := range s.Notices {
		notices[i] = canon.Object{"account": canon.String(n.Account), "balance": canon.Int(n.Balance)}
	}
	audits := make(canon.Array, len(s.Audits))
	for i, a := range s.Audits {
		audits[i] = canon.Object{
			"label": canon.String(a.Label),
			"due":   canon.Int(a.Due.Nanos()),
			"ran":   canon.Int(a.Ran),
			"total": canon.Int(a.Total),
		}
	}
	return canon.Object{
		"accounts": s.Accounts.Value(),
		"notices":  notices,
		"audits":   audits,
	}
}

// Action is the closed set of ledger actions.
type Action interface {
	redux.EnablingCondition[State]
	trace.Describer
}

// AccountsAction lifts an accounts action into the ledger.
type AccountsAction struct {
	Inner accounts.Action
}

// Transfer moves Amount between two open accounts.
type Transfer struct {
	From   string
	To     string
	Amount int64
}

type Notify struct {
	Account string
	Balance int64
}

// ScheduleAudit arranges for an AuditDue After the action's own time.
type ScheduleAudit struct {
	Label string
	After time.Duration
}

// AuditDue is produced by the audit callback.
type AuditDue struct {
	Label string
	Due   clock.Timestamp
}

func (a AccountsAction) IsEnabled(s State, t clock.Timestamp) bool {
	return a.Inner != nil && a.Inner.IsEnabled(s.Accounts, t)
}

// Kind and Fields describe a zero AccountsAction too, since rejected
// actions are still logged and counted.
func (a AccountsAction) Kind() string {
	if a.Inner == nil {
		return "AccountsAction"
	}
	return a.Inner.Kind()
}

func (a AccountsAction) Fields() canon.Object {
	if a.Inner == nil {
		return canon.Object{}
	}
	return a.Inner.Fields()
}

func (a Transfer) IsEnabled(s State, _ clock.Timestamp) bool {
	return a.Amount > 0 &&
		a.From != a.To &&
		s.Accounts.Has(a.From) &&
		s.Accounts.Has(a.To) &&
		s.Accounts.Balances[a.From] >= a.Amount
}
func (Transfer) Kind() string { return "Transfer" }
func (a Transfer) Fields() canon.Object {
	return canon.Object{
		"from":   canon.String(a.From),
		"to":     canon.String(a.To),
		"amount": canon.Int(a.Amount),
	}
}

func (Notify) IsEnabled(State, clock.Timestamp) bool { return true }
func (Notify) Kind() string                          { return "Notify" }
func (a Notify) Fields() canon.Object {
	return canon.Object{"account": canon.String(a.Account), "balance": canon.Int(a.Balance)}
}

func (a ScheduleAudit) IsEnabled(s State, _ clock.Timestamp) bool {
	_, exists := s.audit(a.Label)
	return a.Label != "" && a.After >= 0 && !exists
}
func (ScheduleAudit) Kind() string { return "ScheduleAudit" }
func (a ScheduleAudit) Fields() canon.Object {
	return canon.Object{"label": canon.String(a.Label), "after": canon.Int(a.After.Nanoseconds())}
}

// AuditDue is enabled once per scheduled audit.
func (a AuditDue) IsEnabled(s State, _ clock.Timestamp) bool {
	i, ok := s.audit(a.Label)
	return ok && s.Audits[i].Ran == 0
}
func (AuditDue) Kind() string { return "AuditDue" }
func (a AuditDue) Fields() canon.Object {
	return canon.Object{"label": canon.String(a.Label), "due": canon.Int(a.Due.Nanos())}
}

// Reduce applies an action to the ledger state.
func Reduce(s *State, a redux.ActionWithMeta[Action], d *redux.Dispatcher[Action]) {
	switch act := a.Action().(type) {
	case AccountsAction:
		if c, changed := accounts.Apply(&s.Accounts, act.Inner); changed {
			d.Push(Notify{Account: c.Account, Balance: c.Balance})
		}
	case Transfer:
		d.Push(AccountsAction{Inner: accounts.Withdraw{Account: act.From, Amount: act.Amount}})
		d.Push(AccountsAction{Inner: accounts.Deposit{Account: act.To, Amount: act.Amount}})
	case Notify:
		s.Notices = append(s.Notices, Notice(act))
	case ScheduleAudit:
		s.Audits = append(s.Audits, Audit{
			Label: act.Label,
			Due:   a.Time().SaturatingAdd(act.After),
		})
	case AuditDue:
		i, _ := s.audit(act.Label)
		var total int64
		for _, b := range s.Accounts.Balances {
			total += b
		}
		s.Audits[i].Ran = a.ID().Nanos()
		s.Audits[i].Total = total
	}
}

// Store is the ledger's store type.
type Store = redux.Store[State, *Service, Action]

// Effects parks audit timers. Nothing else in the ledger has side effects.
func Effects(store *Store, a redux.ActionWithMeta[Action]) {
	if act, ok := a.Action().(ScheduleAudit); ok {
		args := AuditArgs{Label: act.Label, Due: a.Time().SaturatingAdd(act.After)}
		// AuditArgs always marshals.
		if err := store.Service().Park(args.Due, auditDue, args); err != nil {
			panic(err)
		}
	}
}
