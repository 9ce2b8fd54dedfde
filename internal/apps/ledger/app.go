package ledger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/redux/internal/apps"
	"github.com/roach88/redux/internal/apps/ledger/accounts"
	"github.com/roach88/redux/internal/canon"
	"github.com/roach88/redux/internal/redux"
	"github.com/roach88/redux/internal/trace"
)

// Name is the registry key.
const Name = "ledger"

type accountsStore = redux.SubStore[State, *Service, Action, accounts.State, accounts.Action]

// App adapts a ledger store to apps.Instance.
type App struct {
	store    *Store
	accounts *accountsStore
	service  *Service
	recorder *trace.Recorder
	logger   *slog.Logger
}

// New is the apps.Factory for the ledger.
func New(env apps.Env) (apps.Instance, error) {
	logger := env.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rec := trace.NewRecorder()
	svc := NewService(env.Time)
	opts := append(env.Options(), redux.WithCallbacks(NewCallbacks()))

	store := redux.New[State, *Service, Action](
		Reduce,
		trace.Wrap[State, *Service, Action](rec, Effects),
		svc,
		env.Start,
		NewState(),
		opts...,
	)
	sub := redux.NewSubStore[State, *Service, Action, accounts.State, accounts.Action](
		store,
		func(s State) accounts.State { return s.Accounts },
		func(a accounts.Action) Action { return AccountsAction{Inner: a} },
	)

	return &App{
		store:    store,
		accounts: sub,
		service:  svc,
		recorder: rec,
		logger:   logger.With("app", Name),
	}, nil
}

func (a *App) Name() string { return Name }

// Dispatch sends account actions through the accounts sub-store and
// everything else through the ledger store.
func (a *App) Dispatch(step apps.Step) (bool, error) {
	switch step.Action {
	case "Open":
		account, err := apps.String(step.Args, "account")
		if err != nil {
			return false, err
		}
		return a.accounts.Dispatch(accounts.Open{Account: account}), nil
	case "Deposit", "Withdraw":
		account, err := apps.String(step.Args, "account")
		if err != nil {
			return false, err
		}
		amount, err := apps.Int(step.Args, "amount")
		if err != nil {
			return false, err
		}
		if step.Action == "Deposit" {
			return a.accounts.Dispatch(accounts.Deposit{Account: account, Amount: amount}), nil
		}
		return a.accounts.Dispatch(accounts.Withdraw{Account: account, Amount: amount}), nil
	case "Transfer":
		from, err := apps.String(step.Args, "from")
		if err != nil {
			return false, err
		}
		to, err := apps.String(step.Args, "to")
		if err != nil {
			return false, err
		}
		amount, err := apps.Int(step.Args, "amount")
		if err != nil {
			return false, err
		}
		return a.store.Dispatch(Transfer{From: from, To: to, Amount: amount}), nil
	case "ScheduleAudit":
		label, err := apps.String(step.Args, "label")
		if err != nil {
			return false, err
		}
		after, err := apps.Int(step.Args, "after")
		if err != nil {
			return false, err
		}
		return a.store.Dispatch(ScheduleAudit{Label: label, After: time.Duration(after)}), nil
	default:
		return false, apps.UnknownAction(Name, step.Action)
	}
}

// Poll fires every timer due at the current time. Parked timers hold only
// a callback name, so each one is resolved through the store's registry.
func (a *App) Poll() int {
	now := a.store.MonotonicToTime(a.service.Peek())
	fired := 0
	for _, t := range a.service.TakeDue(now) {
		if err := a.fire(t); err != nil {
			a.logger.Error("timer dropped", "due", t.Due, "err", err)
			continue
		}
		fired++
	}
	return fired
}

func (a *App) fire(t Timer) error {
	var cb redux.Callback[AuditArgs, Action]
	if err := json.Unmarshal(t.Callback, &cb); err != nil {
		return err
	}
	var args AuditArgs
	if err := json.Unmarshal(t.Args, &args); err != nil {
		return fmt.Errorf("%s args: %w", cb.Name(), err)
	}
	a.logger.Debug("timer fired", "callback", cb.Name(), "label", args.Label, "due", t.Due)
	redux.DispatchCallback(a.store, cb, args)
	return nil
}

func (a *App) Records() []trace.Record { return a.recorder.Records() }

func (a *App) State() canon.Object { return a.store.State().Value() }

func (a *App) LastActionID() uint64 { return a.store.LastActionID().Nanos() }

// Store exposes the underlying store for tests.
func (a *App) Store() *Store { return a.store }
