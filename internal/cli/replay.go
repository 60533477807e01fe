package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/radolang/rado/ast"
	"github.com/radolang/rado/internal/store"
	"github.com/radolang/rado/sphere"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	MaxSteps int
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <sources-dir> <run-id>",
		Short: "Re-execute a journaled run and verify determinism",
		Long: `Re-execute a journaled run against the given sources and verify the
outcome is unchanged: the graph is rebuilt under the recorded
configuration and compared by fingerprint, then the accessibility query
reruns with the recorded inventory and placement and every per-path
outcome is compared in sequence.

Pass "last" as the run id to replay the most recent run.

Exit codes:
  0 - replay matches the journal
  1 - divergence detected
  2 - command error (unknown run id, missing database or sources)

Examples:
  rado replay ./logic last --db runs.db
  rado replay ./logic 0195fced-6bca-7000-8000-4f29c0ffee00 --db runs.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "evaluation step budget (0 uses the default)")

	return cmd
}

func runReplay(opts *ReplayOptions, dir, runID string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Database == "" {
		return NewExitError(ExitCommandError, "replay requires --db or RADO_DB")
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open journal", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var run store.Run
	if runID == "last" {
		run, err = st.LastRun(ctx)
	} else {
		run, err = st.GetRun(ctx, runID)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return WrapExitError(ExitCommandError, "no such run", err)
		}
		return WrapExitError(ExitCommandError, "load run", err)
	}

	g, err := rebuildGraph(dir, run.Config)
	if err != nil {
		return reportError(formatter, err)
	}

	if g.Fingerprint() != run.GraphFP {
		return outputReplayDiverged(formatter, run.ID, ast.Obj{
			"kind":     "fingerprint",
			"recorded": run.GraphFP,
			"fresh":    g.Fingerprint(),
		}, fmt.Sprintf("graph fingerprint changed: recorded %.12s, fresh %.12s", run.GraphFP, g.Fingerprint()))
	}

	qopts := []sphere.Option{}
	if opts.MaxSteps > 0 {
		qopts = append(qopts, sphere.WithMaxSteps(opts.MaxSteps))
	}
	if len(run.Placement) > 0 {
		qopts = append(qopts, sphere.WithPlacement(run.Placement))
	}
	res, err := sphere.Reachable(ctx, g, newInventory(run.Inventory), qopts...)
	if err != nil {
		return reportError(formatter, err)
	}

	fresh := resultsInOrder(g, res)
	if div := store.Verify(run.Results, fresh); div != nil {
		details := ast.Obj{
			"kind":     "results",
			"seq":      div.Seq,
			"recorded": div.Recorded,
			"fresh":    div.Fresh,
		}
		if div.Seq >= 0 {
			details["path"] = div.Path
		}
		return outputReplayDiverged(formatter, run.ID, details, div.String())
	}

	formatter.VerboseLog("replayed %d result(s) in %d sweep(s), %d step(s)", len(fresh), res.Sweeps, res.Steps)

	if formatter.Format == "json" {
		return formatter.Success(ast.Obj{
			"run_id":      run.ID,
			"fingerprint": run.GraphFP,
			"results":     len(fresh),
			"match":       true,
		})
	}
	fmt.Fprintf(formatter.Writer, "✓ Run %s replayed identically (%d result(s))\n", run.ID, len(fresh))
	return nil
}

func outputReplayDiverged(f *OutputFormatter, runID string, details ast.Obj, message string) error {
	if f.Format == "json" {
		_ = f.Error("REPLAY_DIVERGED", message, details)
		return NewExitError(ExitFailure, fmt.Sprintf("run %s diverged", runID))
	}
	fmt.Fprintf(f.Writer, "✗ Run %s diverged\n", runID)
	fmt.Fprintf(f.Writer, "  %s\n", message)
	return NewExitError(ExitFailure, fmt.Sprintf("run %s diverged", runID))
}
