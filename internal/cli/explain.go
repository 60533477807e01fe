package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/radolang/rado/ast"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	Configsets []string
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain <sources-dir> <path>",
		Short: "Show the effective requirement gating a path",
		Long: `Build the logic graph and print the effective requirement for a
region, location, or link: the declaration's own requires clauses
conjoined with every enclosing region's, exactly as the accessibility
query evaluates them.

Examples:
  rado explain ./logic Keep.Throne
  rado explain ./logic Bridge --configset Casual --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args[0], ast.Path(args[1]), cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Configsets, "configset", nil, "configset to activate (repeatable, applied in order)")

	return cmd
}

func runExplain(opts *ExplainOptions, dir string, path ast.Path, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	g, err := buildGraph(dir, opts.Configsets)
	if err != nil {
		return reportError(formatter, err)
	}

	req, err := g.RequirementFor(path)
	if err != nil {
		return reportError(formatter, err)
	}
	rendered := ast.FormatExpr(req)

	if formatter.Format == "json" {
		data := ast.Obj{
			"path":        path,
			"requirement": rendered,
		}
		if n, ok := g.Node(path); ok {
			data["visibility"] = ast.FormatExpr(n.Visibility)
		}
		return formatter.Success(data)
	}

	fmt.Fprintf(formatter.Writer, "%s requires %s\n", path, rendered)
	if n, ok := g.Node(path); ok && formatter.Verbose {
		fmt.Fprintf(formatter.Writer, "%s visible when %s\n", path, ast.FormatExpr(n.Visibility))
	}
	return nil
}
