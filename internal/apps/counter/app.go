package counter

import (
	"github.com/roach88/redux/internal/apps"
	"github.com/roach88/redux/internal/canon"
	"github.com/roach88/redux/internal/redux"
	"github.com/roach88/redux/internal/trace"
)

// App adapts a counter store to apps.Instance.
type App struct {
	store    *redux.Store[State, redux.TimeService, Action]
	recorder *trace.Recorder
}

// New is the apps.Factory for the counter.
func New(env apps.Env) (apps.Instance, error) {
	rec := trace.NewRecorder()
	store := redux.New[State, redux.TimeService, Action](
		Reduce,
		trace.Wrap[State, redux.TimeService, Action](rec, Effects),
		env.Time,
		env.Start,
		State{},
		env.Options()...,
	)
	return &App{store: store, recorder: rec}, nil
}

func (a *App) Name() string { return Name }

func (a *App) Dispatch(step apps.Step) (bool, error) {
	action, err := parse(step)
	if err != nil {
		return false, err
	}
	return a.store.Dispatch(action), nil
}

// Poll always returns 0; the counter has no external inputs.
func (a *App) Poll() int { return 0 }

func (a *App) Records() []trace.Record { return a.recorder.Records() }

func (a *App) State() canon.Object {
	return canon.Object{"count": canon.Int(a.store.State().Count)}
}

func (a *App) LastActionID() uint64 { return a.store.LastActionID().Nanos() }

// Store exposes the underlying store for tests.
func (a *App) Store() *redux.Store[State, redux.TimeService, Action] { return a.store }

func parse(step apps.Step) (Action, error) {
	switch step.Action {
	case "Increment":
		return Increment{}, nil
	case "Notify":
		return Notify{}, nil
	case "Decrement":
		return Decrement{}, nil
	case "Add":
		by, err := apps.Int(step.Args, "by")
		if err != nil {
			return nil, err
		}
		return Add{By: by}, nil
	default:
		return nil, apps.UnknownAction(Name, step.Action)
	}
}
