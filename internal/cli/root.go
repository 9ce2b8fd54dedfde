package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/redux/internal/config"
	"github.com/roach88/redux/internal/harness"
	"github.com/roach88/redux/internal/telemetry"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	LogLevel string

	// Config supplies flag defaults from the environment.
	Config config.Config

	// Logger is built from LogLevel before any subcommand runs.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the redux CLI.
func NewRootCommand(cfg config.Config) *cobra.Command {
	opts := &RootOptions{Config: cfg, Logger: telemetry.Discard()}

	cmd := &cobra.Command{
		Use:   "redux",
		Short: "Deterministic dispatch runtime scenario runner",
		Long: `Run, replay and inspect scenarios against the example applications
built on the redux dispatch runtime.

Defaults for the flags below may be set with REDUX_FORMAT, REDUX_LOG_LEVEL,
REDUX_LOG_FORMAT, REDUX_SCENARIOS, REDUX_PARALLEL and REDUX_REPLAY_RUNS.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			logger, err := newLogger(cmd.ErrOrStderr(), opts)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid log settings", err)
			}
			opts.Logger = logger
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", cfg.Format, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", cfg.LogLevel, "log level (debug|info|warn|error)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// newLogger builds the diagnostic logger. --verbose lowers the level to
// debug unless --log-level was given explicitly.
func newLogger(w io.Writer, opts *RootOptions) (*slog.Logger, error) {
	level := opts.LogLevel
	if opts.Verbose && level == opts.Config.LogLevel {
		level = "debug"
	}
	return telemetry.NewLogger(w, telemetry.LoggerOptions{
		Level:  level,
		Format: opts.Config.LogFormat,
	})
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return telemetry.Discard()
	}
	return o.Logger
}

// loadScenario loads a scenario file and maps failures to exit codes.
func loadScenario(f *OutputFormatter, path string) (*harness.Scenario, error) {
	s, err := harness.LoadScenario(path)
	if err != nil {
		_ = f.Error(ErrCodeLoadFailed, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	return s, nil
}
