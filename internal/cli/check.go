package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/radolang/rado/ast"
	"github.com/radolang/rado/graph"
	"github.com/radolang/rado/internal/loader"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	AllErrors  bool
	Configsets []string
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <sources-dir>",
		Short: "Statically check logic sources",
		Long: `Load logic sources, resolve configuration, fold declarations, and
compile the logic graph, reporting every static error on the way.

By default the first error stops the run. Under --all-errors the loader
keeps going and reports every malformed statement; later stages then run
on whatever loaded cleanly, so their findings may be knock-on effects of
the load failures.

Exit codes:
  0 - sources check out
  1 - static errors found
  2 - command error (directory missing or unreadable)

Examples:
  rado check ./logic
  rado check ./logic --all-errors
  rado check ./logic --configset Casual --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.AllErrors, "all-errors", false, "collect every error instead of stopping at the first")
	cmd.Flags().StringArrayVar(&opts.Configsets, "configset", nil, "configset to activate (repeatable, applied in order)")

	return cmd
}

func runCheck(opts *CheckOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	mode := loader.LoadModeFailFast
	if opts.AllErrors {
		mode = loader.LoadModeCollectAll
	}

	var errs []error
	sources, err := loader.Load(dir, loader.WithMode(mode))
	if err != nil {
		if loader.IsNotFound(err) {
			return reportError(formatter, err)
		}
		errs = flattenErrors(err)
		if !opts.AllErrors {
			return outputCheckErrors(formatter, errs)
		}
	}

	g, err := analyze(sources, opts.Configsets)
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return outputCheckErrors(formatter, errs)
	}
	return outputCheckOK(formatter, g)
}

func outputCheckOK(f *OutputFormatter, g *graph.Graph) error {
	var regions, locations int
	for _, n := range g.Nodes() {
		if n.Kind == ast.KindRegion {
			regions++
		} else {
			locations++
		}
	}

	if f.Format == "json" {
		return f.Success(ast.Obj{
			"fingerprint": g.Fingerprint(),
			"regions":     regions,
			"locations":   locations,
			"items":       len(g.Items()),
			"edges":       len(g.Edges()),
		})
	}

	fmt.Fprintf(f.Writer, "✓ Logic valid (%d regions, %d locations, %d items, %d edges)\n",
		regions, locations, len(g.Items()), len(g.Edges()))
	fmt.Fprintf(f.Writer, "  fingerprint: %s\n", g.Fingerprint())
	return nil
}

func outputCheckErrors(f *OutputFormatter, errs []error) error {
	message := fmt.Sprintf("check failed with %d error(s)", len(errs))

	if f.Format == "json" {
		arr := make(ast.Arr, len(errs))
		for i, e := range errs {
			arr[i] = ast.Obj{"code": errorCode(e), "message": e.Error()}
		}
		_ = f.Error("CHECK_FAILED", message, ast.Obj{"errors": arr})
		return NewExitError(ExitFailure, message)
	}

	fmt.Fprintf(f.Writer, "✗ Check failed (%d error(s)):\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(f.Writer, "  - %s\n", e)
	}
	return NewExitError(ExitFailure, message)
}
