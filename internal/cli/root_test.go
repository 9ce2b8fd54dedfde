package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/redux/internal/config"
)

func defaultConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(map[string]string{})
	require.NoError(t, err)
	return cfg
}

// testRoot returns root options as PersistentPreRunE would leave them, for
// calling subcommand constructors directly.
func testRoot(t *testing.T, format string) *RootOptions {
	t.Helper()
	return &RootOptions{Format: format, Config: defaultConfig(t)}
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(defaultConfig(t))
	require.NotNil(t, cmd)
	assert.Equal(t, "redux", cmd.Use)
	assert.Contains(t, cmd.Long, "REDUX_SCENARIOS")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(defaultConfig(t))

	for _, name := range []string{"run", "replay", "trace", "validate", "test"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			require.NotNil(t, sub)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand(defaultConfig(t))

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	level := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, level)
	assert.Equal(t, "warn", level.DefValue)
}

func TestFlagDefaultsFromConfig(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{
		"REDUX_FORMAT":      "json",
		"REDUX_PARALLEL":    "9",
		"REDUX_REPLAY_RUNS": "5",
	})
	require.NoError(t, err)
	cmd := NewRootCommand(cfg)

	assert.Equal(t, "json", cmd.PersistentFlags().Lookup("format").DefValue)

	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)
	assert.Equal(t, "9", testCmd.Flags().Lookup("parallel").DefValue)

	replayCmd, _, err := cmd.Find([]string{"replay"})
	require.NoError(t, err)
	assert.Equal(t, "5", replayCmd.Flags().Lookup("runs").DefValue)
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand(defaultConfig(t))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", "validate", "."})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInvalidLogLevel(t *testing.T) {
	cmd := NewRootCommand(defaultConfig(t))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--log-level", "loud", "validate", "."})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootExecutesSubcommand(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand(defaultConfig(t))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-v", "run", scenarioPath("counter_cascade")})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "✓ counter_cascade")
}
