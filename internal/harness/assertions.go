package harness

import (
	"fmt"
	"slices"

	"github.com/radolang/rado/ast"
)

// Evaluate checks a run against an expectation and returns one message
// per mismatch. Messages are ordered: error expectations first, then
// accessibility, visibility, and inventory in the expectation's own
// listing order.
func Evaluate(res *Result, expect Expectation) []string {
	var failures []string

	if expect.Error != "" {
		if res.Err == nil {
			return append(failures,
				fmt.Sprintf("expected error %s, but the pipeline succeeded", expect.Error))
		}
		if res.Code != expect.Error {
			failures = append(failures,
				fmt.Sprintf("expected error %s, got %s: %v", expect.Error, res.Code, res.Err))
		}
		if expect.Stage != "" && res.Stage != expect.Stage {
			failures = append(failures,
				fmt.Sprintf("expected stage %s, got %s", expect.Stage, res.Stage))
		}
		return failures
	}

	if res.Err != nil {
		return append(failures,
			fmt.Sprintf("pipeline failed at %s: %v", res.Stage, res.Err))
	}

	for _, p := range expect.Accessible {
		failures = appendOutcome(failures, res, p, "accessible", true, accessibleOf)
	}
	for _, p := range expect.Inaccessible {
		failures = appendOutcome(failures, res, p, "inaccessible", false, accessibleOf)
	}
	for _, p := range expect.Visible {
		failures = appendOutcome(failures, res, p, "visible", true, visibleOf)
	}
	for _, p := range expect.Hidden {
		failures = appendOutcome(failures, res, p, "hidden", false, visibleOf)
	}

	paths := make([]string, 0, len(expect.Inventory))
	for p := range expect.Inventory {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	for _, p := range paths {
		want := expect.Inventory[p]
		got := res.Reach.Inventory.Count(ast.Path(p))
		if got != want {
			failures = append(failures,
				fmt.Sprintf("expected %d of %s in the final inventory, got %d", want, p, got))
		}
	}

	return failures
}

func accessibleOf(res *Result, p ast.Path) bool { return res.Reach.Accessible(p) }
func visibleOf(res *Result, p ast.Path) bool    { return res.Reach.Visible(p) }

func appendOutcome(failures []string, res *Result, path, label string, want bool, of func(*Result, ast.Path) bool) []string {
	p := ast.Path(path)
	if _, ok := res.Graph.Node(p); !ok {
		return append(failures, fmt.Sprintf("expectation names %s, which is not a node", path))
	}
	if of(res, p) != want {
		return append(failures, fmt.Sprintf("expected %s to be %s", path, label))
	}
	return failures
}
