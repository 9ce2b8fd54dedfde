package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayDeterministic(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(testRoot(t, "text"))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{scenarioPath("ledger_transfer"), "--runs", "3"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "run 2")
	assert.Contains(t, buf.String(), "✓ ledger_transfer: 3 runs identical")
}

func TestReplayJSONFreshRunIDs(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(testRoot(t, "json"))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	// counter_rejections does not pin run_id.
	cmd.SetArgs([]string{scenarioPath("counter_rejections")})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Deterministic)
	require.Len(t, resp.Data.Runs, 2)
	assert.NotEqual(t, resp.Data.Runs[0].RunID, resp.Data.Runs[1].RunID)
	assert.Equal(t, resp.Data.Runs[0].Digest, resp.Data.Runs[1].Digest)
	assert.Equal(t, resp.Data.Runs[0].LastID, resp.Data.Runs[1].LastID)
	assert.Empty(t, resp.Data.Divergent)
}

func TestReplayRejectsSingleRun(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(testRoot(t, "text"))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{scenarioPath("counter_cascade"), "--runs", "1"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "--runs must be at least 2")
}
