package harness

import (
	"github.com/roach88/redux/internal/canon"
	"github.com/roach88/redux/internal/trace"
)

// StepOutcome records what happened to one dispatch step.
type StepOutcome struct {
	Index      int    `json:"index"`
	Action     string `json:"action"`
	Dispatched bool   `json:"dispatched"`
	// Fired counts timers delivered by the poll after this step.
	Fired int `json:"fired,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	Scenario string `json:"scenario"`
	RunID    string `json:"run_id"`

	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace is every dispatched action in dispatch order.
	Trace []trace.Record `json:"trace"`

	Steps []StepOutcome `json:"steps"`

	// Errors describes each failed expectation or assertion.
	Errors []string `json:"errors,omitempty"`

	// State is the application's final state.
	State canon.Object `json:"state"`

	// Origin is the store's initial id, the prev of the first record.
	Origin uint64 `json:"origin"`

	// Digest hashes Trace. Equal digests mean identical runs.
	Digest string `json:"digest"`
}

// NewResult creates a passing result.
func NewResult(scenario, runID string) *Result {
	return &Result{
		Scenario: scenario,
		RunID:    runID,
		Pass:     true,
		Trace:    []trace.Record{},
		Steps:    []StepOutcome{},
		Errors:   []string{},
		State:    canon.Object{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
