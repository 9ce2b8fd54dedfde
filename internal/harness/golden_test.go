package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"counter_cascade", "ledger_transfer"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario("../../scenarios/" + name + ".yaml")
			require.NoError(t, err)
			require.NoError(t, RunWithGolden(t, s))
		})
	}
}

func TestSnapshot_Deterministic(t *testing.T) {
	s, err := LoadScenario("../../scenarios/ledger_transfer.yaml")
	require.NoError(t, err)

	r1, err := Run(s)
	require.NoError(t, err)
	r2, err := Run(s)
	require.NoError(t, err)

	b1, err := Snapshot(r1)
	require.NoError(t, err)
	b2, err := Snapshot(r2)
	require.NoError(t, err)
	assert.Equal(t, string(b1), string(b2))
}

func TestAssertGolden_ExistingResult(t *testing.T) {
	s, err := LoadScenario("../../scenarios/counter_cascade.yaml")
	require.NoError(t, err)
	result, err := Run(s)
	require.NoError(t, err)

	require.NoError(t, AssertGolden(t, "counter_cascade", result))
}
