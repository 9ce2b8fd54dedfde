package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCommandBundledScenarios(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(testRoot(t, "json"))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join("..", "..", "scenarios"), "--parallel", "2"})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Data.Total)
	assert.Equal(t, 3, resp.Data.Passed)
	assert.Zero(t, resp.Data.Failed)

	// Results keep discovery order regardless of which finished first.
	names := make([]string, len(resp.Data.Scenarios))
	for i, sr := range resp.Data.Scenarios {
		names[i] = sr.Name
	}
	assert.Equal(t, []string{"counter_cascade", "counter_rejections", "ledger_transfer"}, names)
}

func TestTestCommandFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(testRoot(t, "text"))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join("..", "..", "scenarios"), "--filter", "ledger_*"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "✓ ledger_transfer")
	assert.NotContains(t, buf.String(), "counter")
	assert.Contains(t, buf.String(), "1 passed, 0 failed, 1 total")
}

func TestTestCommandFailures(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a_wrong_total", failingScenario)
	writeScenario(t, dir, "b_broken", "name: [unclosed\n")

	buf := &bytes.Buffer{}
	cmd := NewTestCommand(testRoot(t, "text"))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "✗ counter_wrong_total")
	assert.Contains(t, buf.String(), "failed to load scenario")
	assert.Contains(t, buf.String(), "0 passed, 2 failed, 2 total")
}

func TestTestCommandEmptyDir(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(testRoot(t, "text"))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{t.TempDir()})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "No scenarios found.")
}

func TestTestCommandBadDir(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(testRoot(t, "text"))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandDefaultsToConfiguredDir(t *testing.T) {
	root := testRoot(t, "text")
	root.Config.ScenarioDir = filepath.Join("..", "..", "scenarios")

	buf := &bytes.Buffer{}
	cmd := NewTestCommand(root)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--filter", "counter_*"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "2 passed, 0 failed, 2 total")
}
