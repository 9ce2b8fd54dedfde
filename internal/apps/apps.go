// Package apps defines the contract between the scenario harness and the
// example applications built on the redux runtime.
//
// An application owns a Store with its own state and action types. The
// harness drives it through Instance, which speaks in named steps and
// canonical values so that scenarios can be written as data.
package apps

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/redux/internal/canon"
	"github.com/roach88/redux/internal/clock"
	"github.com/roach88/redux/internal/redux"
	"github.com/roach88/redux/internal/trace"
)

// ErrUnknownAction is returned by Instance.Dispatch for an action name the
// application does not define.
var ErrUnknownAction = errors.New("unknown action")

// ErrUnknownApp is returned by Registry.New for an unregistered name.
var ErrUnknownApp = errors.New("unknown app")

// Step is one externally dispatched action, named the way scenarios name it.
type Step struct {
	Action string
	Args   map[string]any
}

// Instance is a running application.
type Instance interface {
	Name() string

	// Dispatch builds the named action from args and dispatches it.
	// The bool reports whether the enabling check passed.
	Dispatch(step Step) (bool, error)

	// Poll feeds due external results back into the store as actions and
	// returns how many fired.
	Poll() int

	// Records returns every dispatched action in dispatch order.
	Records() []trace.Record

	// State returns the application state as a canonical object.
	State() canon.Object

	// LastActionID returns the store's last allocated id in nanoseconds.
	LastActionID() uint64
}

// Env is what an application needs to construct its store.
type Env struct {
	Time      redux.TimeService
	Start     time.Time
	Anchor    *clock.Anchor
	Logger    *slog.Logger
	Observers []redux.Observer
}

// Options converts the environment into store options. Applications
// append their own, such as a callback registry.
func (e Env) Options() []redux.Option {
	var opts []redux.Option
	if e.Anchor != nil {
		opts = append(opts, redux.WithAnchor(e.Anchor))
	}
	if e.Logger != nil {
		opts = append(opts, redux.WithLogger(e.Logger))
	}
	for _, obs := range e.Observers {
		opts = append(opts, redux.WithObserver(obs))
	}
	return opts
}

// Factory constructs a fresh Instance.
type Factory func(env Env) (Instance, error)

// Registry maps application names to factories. It is assembled explicitly
// by the caller; nothing registers itself.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Names must be unique.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("register app %q: name and factory are required", name)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("register app %q: already registered", name)
	}
	r.factories[name] = f
	return nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// New constructs the named application.
func (r *Registry) New(name string, env Env) (Instance, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownApp, name, r.Names())
	}
	return f(env)
}

// Names returns registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// UnknownAction wraps ErrUnknownAction with the app and action names.
func UnknownAction(app, action string) error {
	return fmt.Errorf("%s: %w %q", app, ErrUnknownAction, action)
}
