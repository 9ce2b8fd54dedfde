package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/redux/internal/canon"
	"github.com/roach88/redux/internal/trace"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string         // Assertion type for categorization
	Expected string         // Human-readable expected outcome
	Actual   string         // Human-readable actual outcome
	Trace    []trace.Record // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, r := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s%s %s\n", i+1, strings.Repeat("  ", int(r.Depth)), r.Kind, fieldsString(r.Fields))
		}
	}

	return buf.String()
}

func fieldsString(f canon.Object) string {
	if len(f) == 0 {
		return ""
	}
	b, err := canon.Marshal(f)
	if err != nil {
		return fmt.Sprint(map[string]canon.Value(f))
	}
	return string(b)
}

// EvaluateAssertions checks every assertion against a result and returns
// the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		return assertTraceContains(result.Trace, a)
	case AssertTraceOrder:
		return assertTraceOrder(result.Trace, a)
	case AssertTraceCount:
		return assertTraceCount(result.Trace, a)
	case AssertFinalState:
		return assertFinalState(result.State, a)
	case AssertDepth:
		return assertDepth(result.Trace, a)
	case AssertChainIntact:
		return assertChainIntact(result.Trace, result.Origin)
	case AssertIDsIncreasing:
		return assertIDsIncreasing(result.Trace)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

// assertTraceContains checks for an action of the given kind whose fields
// contain the expected fields.
func assertTraceContains(records []trace.Record, a Assertion) error {
	want, err := toObject(a.Fields)
	if err != nil {
		return fmt.Errorf("trace_contains fields: %w", err)
	}
	for _, r := range records {
		if r.Kind == a.Action && canon.Contains(r.Fields, want) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("action %s with fields %s", a.Action, fieldsString(want)),
		Actual:   "not found in trace",
		Trace:    records,
	}
}

// assertTraceOrder checks that the kinds appear as a subsequence of the
// log. Other actions may appear in between; repeated kinds must appear
// that many times.
func assertTraceOrder(records []trace.Record, a Assertion) error {
	next := 0
	for _, r := range records {
		if next < len(a.Actions) && r.Kind == a.Actions[next] {
			next++
		}
	}
	if next == len(a.Actions) {
		return nil
	}

	matched := a.Actions[:next]
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("actions in order: %v", a.Actions),
		Actual:   fmt.Sprintf("matched %v, then no %s", matched, a.Actions[next]),
		Trace:    records,
	}
}

// assertTraceCount checks that the kind appears exactly Count times.
func assertTraceCount(records []trace.Record, a Assertion) error {
	count := 0
	for _, r := range records {
		if r.Kind == a.Action {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Action),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    records,
		}
	}
	return nil
}

// assertFinalState checks that the state contains the expected values.
// Nested objects match as subsets; arrays and scalars must be equal.
func assertFinalState(state canon.Object, a Assertion) error {
	want, err := toObject(a.Expect)
	if err != nil {
		return fmt.Errorf("final_state expect: %w", err)
	}
	if canon.Contains(state, want) {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalState,
		Expected: fieldsString(want),
		Actual:   fieldsString(state),
	}
}

// assertDepth checks the depth of the nth action of a kind.
func assertDepth(records []trace.Record, a Assertion) error {
	occurrence := a.Occurrence
	if occurrence == 0 {
		occurrence = 1
	}

	seen := 0
	for _, r := range records {
		if r.Kind != a.Action {
			continue
		}
		seen++
		if seen < occurrence {
			continue
		}
		if int(r.Depth) != a.Depth {
			return &AssertionError{
				Type:     AssertDepth,
				Expected: fmt.Sprintf("%s #%d at depth %d", a.Action, occurrence, a.Depth),
				Actual:   fmt.Sprintf("depth %d", r.Depth),
				Trace:    records,
			}
		}
		return nil
	}

	return &AssertionError{
		Type:     AssertDepth,
		Expected: fmt.Sprintf("%s #%d at depth %d", a.Action, occurrence, a.Depth),
		Actual:   fmt.Sprintf("%d occurrences", seen),
		Trace:    records,
	}
}

// assertChainIntact checks the prev links both ways: walking the log in
// order, and rebuilding the order from the links alone.
func assertChainIntact(records []trace.Record, origin uint64) error {
	if err := trace.Verify(records, origin); err != nil {
		return &AssertionError{
			Type:     AssertChainIntact,
			Expected: "every prev names the action before it",
			Actual:   err.Error(),
			Trace:    records,
		}
	}

	rebuilt, err := trace.Reconstruct(records)
	if err != nil {
		return &AssertionError{
			Type:     AssertChainIntact,
			Expected: "prev links rebuild the log",
			Actual:   err.Error(),
			Trace:    records,
		}
	}
	for i := range rebuilt {
		if rebuilt[i].ID != records[i].ID {
			return &AssertionError{
				Type:     AssertChainIntact,
				Expected: fmt.Sprintf("record %d has id %d", i, records[i].ID),
				Actual:   fmt.Sprintf("rebuilt id %d", rebuilt[i].ID),
				Trace:    records,
			}
		}
	}
	return nil
}

func assertIDsIncreasing(records []trace.Record) error {
	for i := 1; i < len(records); i++ {
		if records[i].ID <= records[i-1].ID {
			return &AssertionError{
				Type:     AssertIDsIncreasing,
				Expected: fmt.Sprintf("id after %d", records[i-1].ID),
				Actual:   fmt.Sprintf("record %d has id %d", i, records[i].ID),
				Trace:    records,
			}
		}
	}
	return nil
}

func toObject(m map[string]any) (canon.Object, error) {
	if m == nil {
		return canon.Object{}, nil
	}
	v, err := canon.FromAny(m)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(canon.Object)
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", v)
	}
	return obj, nil
}
