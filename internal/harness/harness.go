package harness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/redux/internal/apps"
	"github.com/roach88/redux/internal/apps/counter"
	"github.com/roach88/redux/internal/apps/ledger"
	"github.com/roach88/redux/internal/clock"
	"github.com/roach88/redux/internal/redux"
	"github.com/roach88/redux/internal/telemetry"
	"github.com/roach88/redux/internal/testutil"
	"github.com/roach88/redux/internal/trace"
)

// DefaultApps returns a registry with every example application.
func DefaultApps() *apps.Registry {
	reg := apps.NewRegistry()
	for name, f := range map[string]apps.Factory{
		counter.Name: counter.New,
		ledger.Name:  ledger.New,
	} {
		if err := reg.Register(name, f); err != nil {
			panic(err)
		}
	}
	return reg
}

// Harness executes scenarios. A Harness holds no per-run state and may run
// scenarios concurrently, provided its observers are safe for concurrent use.
type Harness struct {
	apps      *apps.Registry
	runIDs    trace.RunIDGenerator
	logger    *slog.Logger
	observers []redux.Observer
}

// Option configures a Harness.
type Option func(*Harness)

// WithApps replaces the application registry. Default: DefaultApps().
func WithApps(reg *apps.Registry) Option {
	return func(h *Harness) { h.apps = reg }
}

// WithRunIDs sets the generator used for scenarios without a run_id.
// Default: a fixed generator, so repeated runs are byte-identical.
func WithRunIDs(g trace.RunIDGenerator) Option {
	return func(h *Harness) { h.runIDs = g }
}

// WithLogger sets the logger passed to application stores.
// Default: discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// WithObserver adds an observer to every store the harness creates.
func WithObserver(obs redux.Observer) Option {
	return func(h *Harness) { h.observers = append(h.observers, obs) }
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		apps:   DefaultApps(),
		runIDs: testutil.NewFixedRunIDGenerator(""),
		logger: telemetry.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default Harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(context.Background(), scenario)
}

// Run executes a scenario and evaluates its assertions.
//
// Step expectations and assertions that fail are reported in the Result.
// An error is returned only when the scenario cannot be executed: an
// unknown app, an unknown action, or malformed arguments.
//
// Execution flow:
//  1. Create a fresh application on a simulated clock
//  2. Execute steps, polling the application after each
//  3. Collect the trace, final state and digest
//  4. Evaluate assertions
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	start, err := scenario.Clock.StartTime()
	if err != nil {
		return nil, err
	}

	sim := testutil.NewSimulatedTime(time.Duration(scenario.Clock.Step))
	origin := clock.TimestampFromTime(start)

	runID := scenario.RunID
	if runID == "" {
		runID = h.runIDs.Generate()
	}
	logger := h.logger.With("scenario", scenario.Name, "run_id", runID)

	inst, err := h.apps.New(scenario.App, apps.Env{
		Time:      sim,
		Start:     start,
		Anchor:    clock.NewAnchor(origin, clock.InstantOf(0)),
		Logger:    logger,
		Observers: h.observers,
	})
	if err != nil {
		return nil, err
	}

	result := NewResult(scenario.Name, runID)
	result.Origin = origin.Nanos()

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if step.Advance > 0 {
			sim.Advance(time.Duration(step.Advance))
			if fired := inst.Poll(); fired > 0 {
				logger.Debug("timers fired", "step", i, "fired", fired)
			}
			continue
		}

		dispatched, err := inst.Dispatch(apps.Step{Action: step.Dispatch, Args: step.Args})
		if err != nil {
			return nil, fmt.Errorf("steps[%d] %s: %w", i, step.Dispatch, err)
		}
		outcome := StepOutcome{Index: i, Action: step.Dispatch, Dispatched: dispatched}
		outcome.Fired = inst.Poll()
		result.Steps = append(result.Steps, outcome)

		logger.Debug("step completed",
			"step", i,
			"action", step.Dispatch,
			"dispatched", dispatched,
			"last_id", inst.LastActionID())

		if want := step.Expect; want != "" && (want == ExpectDispatched) != dispatched {
			got := ExpectRejected
			if dispatched {
				got = ExpectDispatched
			}
			result.AddError(fmt.Sprintf("steps[%d]: %s expected %s, was %s", i, step.Dispatch, want, got))
		}
	}

	result.Trace = inst.Records()
	result.State = inst.State()
	result.Digest, err = trace.Digest(result.Trace)
	if err != nil {
		return nil, fmt.Errorf("digest trace: %w", err)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}
