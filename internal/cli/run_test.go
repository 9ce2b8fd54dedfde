package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioPath(name string) string {
	return filepath.Join("..", "..", "scenarios", name+".yaml")
}

// writeScenario writes body to a temporary .yaml file and returns its path.
func writeScenario(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const failingScenario = `name: counter_wrong_total
description: "Asserts a count the cascade never reaches"
app: counter
steps:
  - dispatch: Increment
assertions:
  - type: final_state
    expect: { count: 5 }
`

func TestRunPassingScenario(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRunCommand(testRoot(t, "text"))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{scenarioPath("counter_cascade")})

	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "✓ counter_cascade (run counter-cascade)")
	assert.Contains(t, out, "[0] Increment dispatched")
	assert.Contains(t, out, "Increment\n")
	assert.Contains(t, out, "    Increment\n", "second Increment is indented to depth 2")
	assert.Contains(t, out, `state: {"count":2}`)
	assert.Contains(t, out, "digest: ")
}

func TestRunFailingScenario(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "counter_wrong_total", failingScenario)

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(testRoot(t, "text"))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "✗ counter_wrong_total")
	assert.Contains(t, buf.String(), "assertions[0]")
}

func TestRunJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRunCommand(testRoot(t, "json"))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{scenarioPath("ledger_transfer"), "--metrics"})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Scenario string   `json:"scenario"`
			RunID    string   `json:"run_id"`
			Pass     bool     `json:"pass"`
			Digest   string   `json:"digest"`
			Metrics  []string `json:"metrics"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ledger_transfer", resp.Data.Scenario)
	assert.Equal(t, "ledger-transfer", resp.Data.RunID)
	assert.True(t, resp.Data.Pass)
	assert.Len(t, resp.Data.Digest, 64)
	assert.Contains(t, resp.Data.Metrics, `redux_actions_dispatched_total{kind="Transfer"} 1`)
	assert.Contains(t, resp.Data.Metrics, `redux_actions_rejected_total{kind="Withdraw"} 1`)
}

func TestRunMissingFile(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRunCommand(testRoot(t, "json"))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "absent.yaml")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeLoadFailed, resp.Error.Code)
}

func TestRunUnknownApp(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "no_such_app", `name: no_such_app
description: "Names an app nobody registered"
app: thermostat
steps:
  - dispatch: Heat
`)

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(testRoot(t, "json"))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnknownApp, resp.Error.Code)
}

func TestRunRequiresOneArg(t *testing.T) {
	cmd := NewRunCommand(testRoot(t, "text"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	require.Error(t, cmd.Execute())
}
