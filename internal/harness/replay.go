package harness

import (
	"context"
	"fmt"

	"github.com/roach88/redux/internal/canon"
)

// ReplayResult compares repeated executions of one scenario.
type ReplayResult struct {
	Scenario string    `json:"scenario"`
	Runs     []*Result `json:"runs"`
	// Match is true when every run produced the same trace digest and the
	// same final state.
	Match bool `json:"match"`
	// Divergent lists the indexes of runs that differ from the first.
	Divergent []int `json:"divergent,omitempty"`
}

// Replay runs a scenario n times and compares the runs. Runs are
// independent: each creates its own application and clock.
func (h *Harness) Replay(ctx context.Context, scenario *Scenario, n int) (*ReplayResult, error) {
	if n < 2 {
		return nil, fmt.Errorf("replay needs at least 2 runs, got %d", n)
	}

	out := &ReplayResult{Scenario: scenario.Name, Match: true}
	for i := 0; i < n; i++ {
		res, err := h.Run(ctx, scenario)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
		out.Runs = append(out.Runs, res)
		if i == 0 {
			continue
		}
		first := out.Runs[0]
		if res.Digest != first.Digest || !stateEqual(res, first) {
			out.Match = false
			out.Divergent = append(out.Divergent, i)
		}
	}
	return out, nil
}

func stateEqual(a, b *Result) bool {
	return canon.Equal(a.State, b.State)
}
