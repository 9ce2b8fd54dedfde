package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/redux/internal/canon"
)

// Snapshot renders a result's run id, trace and final state as canonical
// JSON. The digest is left out; it is derived from the trace.
func Snapshot(result *Result) ([]byte, error) {
	records := make(canon.Array, len(result.Trace))
	for i, r := range result.Trace {
		records[i] = r.Value()
	}
	state := result.State
	if state == nil {
		state = canon.Object{}
	}
	return canon.Marshal(canon.Object{
		"scenario": canon.String(result.Scenario),
		"run_id":   canon.String(result.RunID),
		"trace":    records,
		"state":    state,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshot)
	return nil
}
