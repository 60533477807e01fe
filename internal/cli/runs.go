package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/radolang/rado/ast"
	"github.com/radolang/rado/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Limit int
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List journaled runs, newest first",
		Long: `List runs recorded in the journal database, newest first.

Examples:
  rado runs --db runs.db
  rado runs --db runs.db --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 lists everything)")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Database == "" {
		return NewExitError(ExitCommandError, "runs requires --db or RADO_DB")
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
	summaries, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "list runs", err)
	}

	if formatter.Format == "json" {
		arr := make(ast.Arr, len(summaries))
		for i, sum := range summaries {
			arr[i] = ast.Obj{
				"id":          sum.ID,
				"created_at":  sum.CreatedAt.UTC().Format(time.RFC3339Nano),
				"fingerprint": sum.GraphFP,
				"steps":       sum.Steps,
				"sweeps":      sum.Sweeps,
			}
		}
		return formatter.Success(ast.Obj{"runs": arr, "count": len(summaries)})
	}

	if len(summaries) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs journaled.")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%d run(s):\n", len(summaries))
	for _, sum := range summaries {
		fmt.Fprintf(formatter.Writer, "  %s  %s  fp=%.12s  steps=%d sweeps=%d\n",
			sum.ID, sum.CreatedAt.UTC().Format(time.RFC3339), sum.GraphFP, sum.Steps, sum.Sweeps)
	}
	return nil
}
