package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/redux/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter   string // scenario filter (glob pattern)
	Parallel int    // scenarios run at once
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name    string   `json:"name"`
	Path    string   `json:"path"`
	Pass    bool     `json:"pass"`
	Actions int      `json:"actions"`
	Digest  string   `json:"digest,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test [scenarios-dir]",
		Short: "Run every scenario in a directory",
		Long: `Run all scenario files under a directory, several at a time, and report
which passed. The directory defaults to $REDUX_SCENARIOS or ./scenarios.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid directory, bad filter, etc.)

Examples:
  redux test
  redux test ./scenarios --filter "ledger_*"
  redux test ./scenarios --parallel 8 --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := rootOpts.Config.ScenarioDir
			if len(args) == 1 {
				dir = args[0]
			}
			return runTests(opts, dir, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern on the file name")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", rootOpts.Config.Parallel, "scenarios to run concurrently")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	if opts.Parallel < 1 {
		_ = f.Error(ErrCodeGeneric, fmt.Sprintf("--parallel must be at least 1, got %d", opts.Parallel), nil)
		return NewExitError(ExitCommandError, "invalid --parallel")
	}

	paths, err := harness.Discover(dir, opts.Filter)
	if err != nil {
		_ = f.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, len(paths)),
		Total:     len(paths),
	}

	if len(paths) == 0 {
		if f.JSON() {
			return f.Success(result)
		}
		f.Text("No scenarios found.\n")
		return nil
	}

	h := harness.New(harness.WithLogger(opts.logger()))

	// Each goroutine writes only its own slot, so results keep file order.
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(opts.Parallel)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result.Scenarios[i] = runScenarioFile(ctx, h, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return WrapExitError(ExitCommandError, "test run interrupted", err)
	}

	for _, sr := range result.Scenarios {
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if f.JSON() {
		if result.Failed == 0 {
			err = f.Success(result)
		} else {
			err = f.Fail(result)
		}
		if err != nil {
			return err
		}
	} else {
		writeTestText(f, result)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
	}
	return nil
}

// runScenarioFile loads and runs one file. Load and execution errors are
// reported as failures of that scenario, not of the whole command.
func runScenarioFile(ctx context.Context, h *harness.Harness, path string) ScenarioResult {
	sr := ScenarioResult{Name: path, Path: path}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
		return sr
	}
	sr.Name = scenario.Name

	result, err := h.Run(ctx, scenario)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return sr
	}

	sr.Pass = result.Pass
	sr.Actions = len(result.Trace)
	sr.Digest = result.Digest
	sr.Errors = result.Errors
	return sr
}

func writeTestText(f *OutputFormatter, result TestResult) {
	for _, sr := range result.Scenarios {
		if sr.Pass {
			f.Text("✓ %s (%d actions)\n", sr.Name, sr.Actions)
			continue
		}
		f.Text("✗ %s\n", sr.Name)
		for _, e := range sr.Errors {
			f.Text("  %s\n", e)
		}
	}
	f.Text("\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}
