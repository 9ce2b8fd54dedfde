package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/redux/internal/apps"
	"github.com/roach88/redux/internal/canon"
	"github.com/roach88/redux/internal/harness"
	"github.com/roach88/redux/internal/telemetry"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Metrics bool
}

// RunOutput is the JSON payload of the run command.
type RunOutput struct {
	*harness.Result
	Metrics []string `json:"metrics,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run one scenario and print its trace",
		Long: `Run a scenario file and print every dispatched action, the final state,
the trace digest and the assertion results.

Exit codes:
  0 - Scenario passed
  1 - A step expectation or assertion failed
  2 - Command error (missing file, unknown app or action, etc.)

Examples:
  redux run scenarios/counter_cascade.yaml
  redux run scenarios/ledger_transfer.yaml --metrics
  redux run scenarios/ledger_transfer.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print dispatch metrics")

	return cmd
}

func runRun(opts *RunOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	scenario, err := loadScenario(f, path)
	if err != nil {
		return err
	}
	f.VerboseLog("Loaded scenario %s (app %s, %d steps)", scenario.Name, scenario.App, len(scenario.Steps))

	hopts := []harness.Option{harness.WithLogger(opts.logger())}
	var metrics *telemetry.Metrics
	if opts.Metrics {
		metrics = telemetry.NewMetrics("")
		hopts = append(hopts, harness.WithObserver(metrics))
	}

	result, err := harness.New(hopts...).Run(cmd.Context(), scenario)
	if err != nil {
		return runError(f, err)
	}

	out := RunOutput{Result: result}
	if metrics != nil {
		var buf bytes.Buffer
		if err := metrics.WriteSummary(&buf); err != nil {
			return WrapExitError(ExitCommandError, "failed to gather metrics", err)
		}
		out.Metrics = strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	}

	if f.JSON() {
		if result.Pass {
			err = f.Success(out)
		} else {
			err = f.Fail(out)
		}
		if err != nil {
			return err
		}
	} else {
		w := f.Writer
		writeResultText(w, result)
		if len(out.Metrics) > 0 {
			fmt.Fprintln(w, "  metrics:")
			for _, line := range out.Metrics {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}
	return nil
}

// runError reports a scenario that could not be executed.
func runError(f *OutputFormatter, err error) error {
	code := ErrCodeRunFailed
	if errors.Is(err, apps.ErrUnknownApp) {
		code = ErrCodeUnknownApp
	}
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, "failed to run scenario", err)
}

// writeResultText prints a result for humans. Trace lines are indented by
// depth so that cascades read as a tree.
func writeResultText(w io.Writer, r *harness.Result) {
	mark := "✓"
	if !r.Pass {
		mark = "✗"
	}
	fmt.Fprintf(w, "%s %s (run %s)\n", mark, r.Scenario, r.RunID)

	fmt.Fprintln(w, "  steps:")
	for _, s := range r.Steps {
		outcome := "rejected"
		if s.Dispatched {
			outcome = "dispatched"
		}
		fired := ""
		if s.Fired > 0 {
			fired = fmt.Sprintf(" (+%d timers)", s.Fired)
		}
		fmt.Fprintf(w, "    [%d] %s %s%s\n", s.Index, s.Action, outcome, fired)
	}

	fmt.Fprintln(w, "  trace:")
	for _, rec := range r.Trace {
		fields := ""
		if len(rec.Fields) > 0 {
			fields = " " + string(canon.MustMarshal(rec.Fields))
		}
		fmt.Fprintf(w, "    %d %s%s%s\n", rec.ID, strings.Repeat("  ", int(rec.Depth)), rec.Kind, fields)
	}

	if state, err := canon.Marshal(r.State); err == nil {
		fmt.Fprintf(w, "  state: %s\n", state)
	}
	fmt.Fprintf(w, "  digest: %s\n", r.Digest)

	for _, e := range r.Errors {
		for i, line := range strings.Split(strings.TrimRight(e, "\n"), "\n") {
			if i == 0 {
				fmt.Fprintf(w, "  - %s\n", line)
			} else {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}
}
