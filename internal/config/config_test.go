package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, Config{
		LogLevel:    "warn",
		LogFormat:   "text",
		Format:      "text",
		ScenarioDir: "scenarios",
		Parallel:    4,
		ReplayRuns:  2,
	}, cfg)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"REDUX_LOG_LEVEL":   "debug",
		"REDUX_FORMAT":      "json",
		"REDUX_PARALLEL":    "8",
		"REDUX_REPLAY_RUNS": "5",
		"REDUX_SCENARIOS":   "testdata",
	})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 8, cfg.Parallel)
	assert.Equal(t, 5, cfg.ReplayRuns)
	assert.Equal(t, "testdata", cfg.ScenarioDir)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"bad format", map[string]string{"REDUX_FORMAT": "yaml"}},
		{"zero parallel", map[string]string{"REDUX_PARALLEL": "0"}},
		{"not a number", map[string]string{"REDUX_PARALLEL": "many"}},
		{"single replay", map[string]string{"REDUX_REPLAY_RUNS": "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.vars)
			assert.Error(t, err)
		})
	}
}
