package redux

import (
	"log/slog"

	"github.com/roach88/redux/internal/clock"
)

// Observer is notified of every dispatch decision. Telemetry and trace
// recorders implement it. Observers must not dispatch.
type Observer interface {
	// ActionDispatched runs after the id is allocated and before the reducer.
	ActionDispatched(meta ActionMeta, action any)
	// ActionRejected runs when the enabling check fails, including for
	// queued actions dropped at drain time.
	ActionRejected(action any, last ActionID)
}

// Option configures a Store.
type Option func(*options)

type options struct {
	anchor    *clock.Anchor
	logger    *slog.Logger
	observers []Observer
	callbacks any
}

// WithAnchor gives the Store its own wall/monotonic anchor instead of the
// process-wide one. Simulations use it so that ids depend only on the
// simulated clock.
func WithAnchor(a *clock.Anchor) Option {
	return func(o *options) {
		o.anchor = a
	}
}

// WithLogger sets the logger for dispatch diagnostics.
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithObserver adds an observer. May be given more than once.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// WithCallbacks installs the registry DispatchCallback resolves
// deserialized callbacks against. The registry's action type must match
// the Store's; New panics otherwise.
func WithCallbacks[A any](reg *Registry[A]) Option {
	return func(o *options) {
		o.callbacks = reg
	}
}
