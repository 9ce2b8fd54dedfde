package cli

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/redux/internal/canon"
	"github.com/roach88/redux/internal/harness"
	"github.com/roach88/redux/internal/trace"
	"github.com/roach88/redux/internal/tracedb"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	From uint64 // action id to walk back from; 0 means the newest action
}

// TraceOutput is the trace command's payload.
type TraceOutput struct {
	Scenario string         `json:"scenario"`
	RunID    string         `json:"run_id"`
	From     uint64         `json:"from"`
	Chain    []trace.Record `json:"chain"`
	// Intact is true when the chain links back to the store's initial id.
	Intact bool           `json:"intact"`
	Kinds  map[string]int `json:"kinds"`
	Depths map[uint32]int `json:"depths"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <scenario>",
		Short: "Show the causal chain behind an action",
		Long: `Run a scenario, index its trace in an in-memory SQLite database, and
walk prev links from one action back to the first.

Without --from the walk starts at the newest action, so the chain is the
whole run in dispatch order.

Exit codes:
  0 - Chain printed and intact
  1 - Chain broken (a prev link does not resolve)
  2 - Command error (missing file, unknown action id, etc.)

Examples:
  redux trace scenarios/ledger_transfer.yaml
  redux trace scenarios/ledger_transfer.yaml --from 1704067200000007000`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().Uint64Var(&opts.From, "from", 0, "action id to start from (default: newest)")

	return cmd
}

func runTrace(opts *TraceOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	scenario, err := loadScenario(f, path)
	if err != nil {
		return err
	}

	result, err := harness.New(harness.WithLogger(opts.logger())).Run(ctx, scenario)
	if err != nil {
		return runError(f, err)
	}

	db, err := tracedb.Open()
	if err != nil {
		return indexError(f, err)
	}
	defer db.Close()

	run := tracedb.Run{
		RunID:    result.RunID,
		Scenario: result.Scenario,
		Origin:   result.Origin,
		Digest:   result.Digest,
	}
	if err := db.WriteRun(ctx, run, result.Trace); err != nil {
		return indexError(f, err)
	}
	f.VerboseLog("Indexed %d actions for run %s", len(result.Trace), run.RunID)

	from := opts.From
	if from == 0 {
		if from, err = db.Head(ctx, run.RunID); err != nil {
			return indexError(f, err)
		}
	}

	chain, err := db.Ancestry(ctx, run.RunID, from)
	if err != nil {
		return indexError(f, err)
	}
	kinds, err := db.KindCounts(ctx, run.RunID)
	if err != nil {
		return indexError(f, err)
	}
	depths, err := db.DepthProfile(ctx, run.RunID)
	if err != nil {
		return indexError(f, err)
	}

	out := TraceOutput{
		Scenario: run.Scenario,
		RunID:    run.RunID,
		From:     from,
		Chain:    chain,
		Intact:   trace.Verify(chain, run.Origin) == nil,
		Kinds:    kinds,
		Depths:   depths,
	}

	if f.JSON() {
		if out.Intact {
			err = f.Success(out)
		} else {
			err = f.Fail(out)
		}
		if err != nil {
			return err
		}
	} else {
		writeTraceText(f, out)
	}

	if !out.Intact {
		return NewExitError(ExitFailure, fmt.Sprintf("chain from %d does not reach the run origin", from))
	}
	return nil
}

func indexError(f *OutputFormatter, err error) error {
	code := ErrCodeIndex
	if errors.Is(err, tracedb.ErrNotFound) {
		code = ErrCodeNotFound
	}
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, "trace index", err)
}

func writeTraceText(f *OutputFormatter, out TraceOutput) {
	f.Text("%s (run %s): %d actions back from %d\n", out.Scenario, out.RunID, len(out.Chain), out.From)
	for _, r := range out.Chain {
		fields := ""
		if len(r.Fields) > 0 {
			fields = " " + string(canon.MustMarshal(r.Fields))
		}
		f.Text("  %s%s\n", r, fields)
	}

	kinds := make([]string, 0, len(out.Kinds))
	for k := range out.Kinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	f.Text("kinds:")
	for _, k := range kinds {
		f.Text(" %s=%d", k, out.Kinds[k])
	}
	f.Text("\n")

	depths := make([]uint32, 0, len(out.Depths))
	for d := range out.Depths {
		depths = append(depths, d)
	}
	slices.Sort(depths)
	f.Text("depths:")
	for _, d := range depths {
		f.Text(" %d=%d", d, out.Depths[d])
	}
	f.Text("\n")

	if out.Intact {
		f.Text("✓ chain intact\n")
	} else {
		f.Text("✗ chain broken\n")
	}
}
