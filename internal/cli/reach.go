package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/radolang/rado/ast"
	"github.com/radolang/rado/graph"
	"github.com/radolang/rado/internal/store"
	"github.com/radolang/rado/sphere"
)

// ReachOptions holds flags for the reach command.
type ReachOptions struct {
	*RootOptions
	Configsets []string
	Items      []string
	Placements []string
	MaxSteps   int
	Journal    bool
}

// NewReachCommand creates the reach command.
func NewReachCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReachOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reach <sources-dir>",
		Short: "Compute accessibility for every region and location",
		Long: `Build the logic graph and run an accessibility query over it: which
regions and locations can be reached from the start state with the
given inventory, and which are visible.

Repeated --item flags accumulate; --placement assigns items to
locations, overriding their declared supply. With --journal the query
inputs and per-path outcomes are recorded to the run journal for later
replay.

Examples:
  rado reach ./logic
  rado reach ./logic --configset Casual --item Sword=1 --item Bomb=3
  rado reach ./logic --placement Field.Chest=Bomb --journal --db runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReach(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Configsets, "configset", nil, "configset to activate (repeatable, applied in order)")
	cmd.Flags().StringArrayVar(&opts.Items, "item", nil, "starting inventory entry, name=count (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Placements, "placement", nil, "item placement, location=item (repeatable)")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "evaluation step budget (0 uses the default)")
	cmd.Flags().BoolVar(&opts.Journal, "journal", false, "record the run to the journal database")

	return cmd
}

func runReach(opts *ReachOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	inventory, err := parseItemCounts(opts.Items)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --item", err)
	}
	placement, err := parsePlacement(opts.Placements)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --placement", err)
	}
	if opts.Journal && opts.Database == "" {
		return NewExitError(ExitCommandError, "--journal requires --db or RADO_DB")
	}

	g, err := buildGraph(dir, opts.Configsets)
	if err != nil {
		return reportError(formatter, err)
	}

	inv := newInventory(inventory)

	qopts := []sphere.Option{}
	if opts.MaxSteps > 0 {
		qopts = append(qopts, sphere.WithMaxSteps(opts.MaxSteps))
	}
	if len(placement) > 0 {
		qopts = append(qopts, sphere.WithPlacement(placement))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := sphere.Reachable(ctx, g, inv, qopts...)
	if err != nil {
		return reportError(formatter, err)
	}

	var runID string
	if opts.Journal {
		runID, err = journalRun(ctx, opts.Database, g, inventory, placement, res)
		if err != nil {
			return WrapExitError(ExitCommandError, "journal run", err)
		}
	}

	return outputReach(formatter, g, res, runID)
}

// parseItemCounts parses repeated name=count flags into a count map.
// Repeats of a name accumulate. Count validity against the graph is the
// query's job; only the syntax is checked here.
func parseItemCounts(entries []string) (map[ast.Path]int64, error) {
	out := make(map[ast.Path]int64, len(entries))
	for _, entry := range entries {
		name, count, ok := strings.Cut(entry, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%q: want name=count", entry)
		}
		n, err := strconv.ParseInt(count, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q: count %q is not an integer", entry, count)
		}
		out[ast.Path(name)] += n
	}
	return out, nil
}

// parsePlacement parses repeated location=item flags. A location may
// appear only once.
func parsePlacement(entries []string) (map[ast.Path]ast.Path, error) {
	out := make(map[ast.Path]ast.Path, len(entries))
	for _, entry := range entries {
		loc, item, ok := strings.Cut(entry, "=")
		if !ok || loc == "" || item == "" {
			return nil, fmt.Errorf("%q: want location=item", entry)
		}
		if prev, dup := out[ast.Path(loc)]; dup {
			return nil, fmt.Errorf("%q: location already placed with %s", entry, prev)
		}
		out[ast.Path(loc)] = ast.Path(item)
	}
	return out, nil
}

// journalRun records the query inputs and outcomes and returns the run id.
func journalRun(ctx context.Context, dbPath string, g *graph.Graph, inventory map[ast.Path]int64, placement map[ast.Path]ast.Path, res *sphere.Result) (string, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer st.Close()

	return st.RecordRun(ctx, store.Run{
		GraphFP:   g.Fingerprint(),
		Config:    g.Config().Values(),
		Inventory: inventory,
		Placement: placement,
		Steps:     res.Steps,
		Sweeps:    res.Sweeps,
		Results:   resultsInOrder(g, res),
	})
}

// resultsInOrder flattens per-path outcomes into the graph's binding
// order, which fixes the journal's result sequence.
func resultsInOrder(g *graph.Graph, res *sphere.Result) []store.Result {
	nodes := g.Nodes()
	out := make([]store.Result, len(nodes))
	for i, n := range nodes {
		a := res.At(n.Path)
		out[i] = store.Result{Path: n.Path, Accessible: a.Accessible, Visible: a.Visible}
	}
	return out
}

func outputReach(f *OutputFormatter, g *graph.Graph, res *sphere.Result, runID string) error {
	nodes := g.Nodes()
	accessible := 0
	for _, n := range nodes {
		if res.Accessible(n.Path) {
			accessible++
		}
	}

	if f.Format == "json" {
		nodeObj := make(ast.Obj, len(nodes))
		for _, n := range nodes {
			a := res.At(n.Path)
			nodeObj[string(n.Path)] = ast.Obj{"accessible": a.Accessible, "visible": a.Visible}
		}
		invObj := ast.Obj{}
		for _, p := range res.Inventory.Paths() {
			invObj[string(p)] = res.Inventory.Count(p)
		}
		data := ast.Obj{
			"fingerprint": g.Fingerprint(),
			"nodes":       nodeObj,
			"inventory":   invObj,
			"steps":       res.Steps,
			"sweeps":      res.Sweeps,
		}
		if runID != "" {
			data["run_id"] = runID
		}
		return f.Success(data)
	}

	fmt.Fprintf(f.Writer, "Reachable: %d/%d node(s) in %d sweep(s), %d step(s)\n",
		accessible, len(nodes), res.Sweeps, res.Steps)
	for _, n := range nodes {
		a := res.At(n.Path)
		mark := "✗"
		if a.Accessible {
			mark = "✓"
		}
		suffix := ""
		if !a.Visible {
			suffix = " (hidden)"
		}
		fmt.Fprintf(f.Writer, "%s %s%s\n", mark, n.Path, suffix)
	}
	if f.Verbose {
		fmt.Fprintln(f.Writer, "Final inventory:")
		for _, p := range res.Inventory.Paths() {
			fmt.Fprintf(f.Writer, "  %s: %d\n", p, res.Inventory.Count(p))
		}
	}
	if runID != "" {
		fmt.Fprintf(f.Writer, "Journaled as %s\n", runID)
	}
	return nil
}
