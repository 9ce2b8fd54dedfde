package harness

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// DefaultStart is the wall time of a scenario's initial id when the
// scenario does not set clock.start.
const DefaultStart = "2024-01-01T00:00:00Z"

// Scenario is one scripted run of an application.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// App is the registry name of the application to run.
	App string `yaml:"app"`

	// RunID names the run. If empty, the harness's generator supplies one.
	RunID string `yaml:"run_id,omitempty"`

	Clock ClockSpec `yaml:"clock,omitempty"`

	// Steps are executed in order; the application is polled after each.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ClockSpec configures the simulated clock.
type ClockSpec struct {
	// Start is an RFC 3339 timestamp. Empty means DefaultStart.
	Start string `yaml:"start,omitempty"`

	// Step is how far, in nanoseconds, each clock read advances time.
	// Zero freezes the clock, so ids advance by one nanosecond each.
	Step int64 `yaml:"step,omitempty"`
}

// StartTime parses Start.
func (c ClockSpec) StartTime() (time.Time, error) {
	s := c.Start
	if s == "" {
		s = DefaultStart
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("clock.start: %w", err)
	}
	if t.Before(time.Unix(0, 0)) {
		return time.Time{}, fmt.Errorf("clock.start: %s is before the Unix epoch", s)
	}
	return t, nil
}

// Step is either a dispatch or a clock advance.
type Step struct {
	// Dispatch is the action name.
	Dispatch string `yaml:"dispatch,omitempty"`

	Args map[string]any `yaml:"args,omitempty"`

	// Expect is "dispatched", "rejected", or empty for unchecked.
	Expect string `yaml:"expect,omitempty"`

	// Advance moves the simulated clock forward by this many nanoseconds.
	Advance int64 `yaml:"advance,omitempty"`
}

// Expectation values for Step.Expect.
const (
	ExpectDispatched = "dispatched"
	ExpectRejected   = "rejected"
)

// Assertion validates the final trace or state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Action is an action kind (trace_contains, trace_count, depth).
	Action string `yaml:"action,omitempty"`

	// Fields are matched as a subset of the action's fields (trace_contains).
	Fields map[string]any `yaml:"fields,omitempty"`

	// Actions is the expected kind subsequence (trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Count is the exact number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Expect is matched as a subset of the final state (final_state).
	Expect map[string]any `yaml:"expect,omitempty"`

	// Occurrence picks the nth action of the kind, from 1 (depth).
	// Zero means the first.
	Occurrence int `yaml:"occurrence,omitempty"`

	// Depth is the expected recursion depth (depth).
	Depth int `yaml:"depth,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
	AssertDepth         = "depth"
	AssertChainIntact   = "chain_intact"
	AssertIDsIncreasing = "ids_increasing"
)

// LoadScenario reads, schema-checks and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScenario checks data against the CUE schema, decodes it strictly,
// and validates the result.
func ParseScenario(data []byte) (*Scenario, error) {
	if errs := CheckSchema(data); len(errs) > 0 {
		return nil, fmt.Errorf("schema: %w", errors.Join(errs...))
	}

	// KnownFields catches typos like "assertion:" for "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// CheckSchema validates a YAML document against the scenario schema and
// returns one error per violation.
//
// A fresh CUE context is used per call; contexts are not safe for
// concurrent use and the test command checks scenarios in parallel.
func CheckSchema(data []byte) []error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return []error{fmt.Errorf("failed to parse YAML: %w", err)}
	}
	if doc == nil {
		return []error{errors.New("empty document")}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE).LookupPath(cue.ParsePath("#Scenario"))
	if err := schema.Err(); err != nil {
		return []error{fmt.Errorf("compile schema: %w", err)}
	}

	value := schema.Unify(ctx.Encode(doc))
	err := value.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var errs []error
	for _, e := range cueerrors.Errors(err) {
		errs = append(errs, e)
	}
	return errs
}

// validateScenario checks what the schema cannot: parseable times and
// mutually exclusive step kinds.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.App == "" {
		return fmt.Errorf("app is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if _, err := s.Clock.StartTime(); err != nil {
		return err
	}
	if s.Clock.Step < 0 {
		return fmt.Errorf("clock.step must be non-negative")
	}

	for i, step := range s.Steps {
		switch {
		case step.Dispatch != "" && step.Advance != 0:
			return fmt.Errorf("steps[%d]: dispatch and advance are mutually exclusive", i)
		case step.Dispatch == "" && step.Advance <= 0:
			return fmt.Errorf("steps[%d]: needs dispatch or a positive advance", i)
		}
		switch step.Expect {
		case "", ExpectDispatched, ExpectRejected:
		default:
			return fmt.Errorf("steps[%d]: expect must be %q or %q", i, ExpectDispatched, ExpectRejected)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertTraceContains, AssertTraceCount, AssertDepth:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for %s", index, a.Type)
		}
		if a.Count < 0 || a.Depth < 0 || a.Occurrence < 0 {
			return fmt.Errorf("assertions[%d]: counts must be non-negative", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertChainIntact, AssertIDsIncreasing:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
