package sphere

import (
	"context"
	"slices"

	"github.com/radolang/rado/ast"
	"github.com/radolang/rado/graph"
)

// PlacementReport is the outcome of validating an item placement.
type PlacementReport struct {
	// Complete reports whether every placed location is reachable, so
	// every placed item can actually be collected.
	Complete bool

	// Unreachable lists the placed locations the real phase cannot
	// reach, in binding order.
	Unreachable []ast.Path

	// Result is the underlying accessibility query, for callers that
	// want the full picture behind the verdict.
	Result *Result
}

// ValidatePlacement runs an accessibility query under the given placement
// and reports whether every placed location can be reached. The starting
// inventory contributes before any site yields; a nil inventory starts
// from the graph's start state alone.
func ValidatePlacement(ctx context.Context, g *graph.Graph, placement map[ast.Path]ast.Path, inv *Inventory, opts ...Option) (*PlacementReport, error) {
	withPlacement := append(slices.Clone(opts), WithPlacement(placement))
	res, err := Reachable(ctx, g, inv, withPlacement...)
	if err != nil {
		return nil, err
	}

	var unreachable []ast.Path
	for _, n := range g.Nodes() {
		if _, ok := placement[n.Path]; !ok {
			continue
		}
		if !res.Accessible(n.Path) {
			unreachable = append(unreachable, n.Path)
		}
	}
	return &PlacementReport{
		Complete:    len(unreachable) == 0,
		Unreachable: unreachable,
		Result:      res,
	}, nil
}
