package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/radolang/rado/ast"
	"github.com/radolang/rado/config"
	"github.com/radolang/rado/eval"
	"github.com/radolang/rado/graph"
	"github.com/radolang/rado/internal/loader"
	"github.com/radolang/rado/merge"
	"github.com/radolang/rado/sphere"
)

// Result is the outcome of one scenario run.
type Result struct {
	// Pass reports whether the run matched the scenario's expectation.
	Pass bool

	// Failures holds the expectation mismatches. Empty when Pass.
	Failures []string

	// Stage names the pipeline stage that failed, or "" on success.
	Stage string

	// Code is the taxonomy code of Err, or "" on success.
	Code string

	// Err is the pipeline error, nil on success.
	Err error

	// Graph is the built logic graph, nil when an earlier stage failed.
	Graph *graph.Graph

	// Reach is the accessibility outcome, nil when the pipeline failed.
	Reach *sphere.Result

	// Trace holds the canonical trace events in emission order.
	Trace []ast.Obj
}

// Run executes a scenario: it writes the inline sources to a scratch
// directory, runs the full pipeline, builds the trace, and evaluates the
// expectation. Pipeline errors are captured on the Result; the returned
// error is reserved for infrastructure faults.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "rado-harness-")
	if err != nil {
		return nil, fmt.Errorf("harness: scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	for _, src := range scenario.Sources {
		path := filepath.Join(dir, src.Name)
		if err := os.WriteFile(path, []byte(src.Logic), 0o644); err != nil {
			return nil, fmt.Errorf("harness: write source %s: %w", src.Name, err)
		}
	}

	result := &Result{Pass: true}
	runPipeline(ctx, dir, scenario, result)
	result.Failures = Evaluate(result, scenario.Expect)
	if len(result.Failures) > 0 {
		result.Pass = false
	}
	return result, nil
}

// runPipeline drives the stages in order, tracing each observable result
// and stopping at the first stage error.
func runPipeline(ctx context.Context, dir string, scenario *Scenario, result *Result) {
	sources, err := loader.Load(dir)
	if err != nil {
		result.fail(StageLoad, err)
		return
	}

	decls, err := config.Collect(sources)
	if err != nil {
		result.fail(StageConfig, err)
		return
	}
	snap, err := config.Resolve(decls, scenario.Configsets)
	if err != nil {
		result.fail(StageConfig, err)
		return
	}
	result.trace(ast.Obj{"event": "config", "values": configValues(snap)})

	tree, err := merge.Resolve(sources, snap)
	if err != nil {
		result.fail(StageMerge, err)
		return
	}

	g, err := graph.Build(tree, snap, graph.WithRandomChoices(randomChoices(scenario)))
	if err != nil {
		result.fail(StageGraph, err)
		return
	}
	result.Graph = g
	result.trace(ast.Obj{
		"edges": len(g.Edges()),
		"event": "graph",
		"items": len(g.Items()),
		"nodes": len(g.Nodes()),
	})

	opts := []sphere.Option{}
	if scenario.MaxSteps > 0 {
		opts = append(opts, sphere.WithMaxSteps(scenario.MaxSteps))
	}
	if len(scenario.Placement) > 0 {
		opts = append(opts, sphere.WithPlacement(placement(scenario)))
	}
	res, err := sphere.Reachable(ctx, g, inventory(scenario), opts...)
	if err != nil {
		result.fail(StageReach, err)
		return
	}
	result.Reach = res

	for _, n := range g.Nodes() {
		a := res.At(n.Path)
		result.trace(ast.Obj{
			"accessible": a.Accessible,
			"event":      "node",
			"path":       n.Path,
			"visible":    a.Visible,
		})
	}
	counts := ast.Obj{}
	for _, p := range res.Inventory.Paths() {
		counts[string(p)] = res.Inventory.Count(p)
	}
	result.trace(ast.Obj{"counts": counts, "event": "inventory"})
}

func (r *Result) fail(stage string, err error) {
	r.Stage = stage
	r.Err = err
	r.Code = errCode(err)
	r.trace(ast.Obj{"code": r.Code, "event": "error", "stage": stage})
}

func (r *Result) trace(event ast.Obj) {
	r.Trace = append(r.Trace, event)
}

// configValues renders a snapshot's resolved values as tagged objects,
// matching the journal's config encoding.
func configValues(snap *config.Snapshot) ast.Obj {
	out := ast.Obj{}
	for p, v := range snap.Values() {
		switch val := v.(type) {
		case ast.NumValue:
			out[string(p)] = ast.Obj{"num": val.String()}
		case ast.BoolValue:
			out[string(p)] = ast.Obj{"bool": bool(val)}
		case ast.PathValue:
			out[string(p)] = ast.Obj{"path": string(val)}
		}
	}
	return out
}

func randomChoices(scenario *Scenario) map[ast.Path]int {
	if len(scenario.Random) == 0 {
		return nil
	}
	out := make(map[ast.Path]int, len(scenario.Random))
	for p, idx := range scenario.Random {
		out[ast.Path(p)] = idx
	}
	return out
}

func placement(scenario *Scenario) map[ast.Path]ast.Path {
	out := make(map[ast.Path]ast.Path, len(scenario.Placement))
	for loc, item := range scenario.Placement {
		out[ast.Path(loc)] = ast.Path(item)
	}
	return out
}

// inventory applies the scenario's starting counts in sorted path order,
// so a scenario means the same thing on every run.
func inventory(scenario *Scenario) *sphere.Inventory {
	paths := make([]string, 0, len(scenario.Inventory))
	for p := range scenario.Inventory {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	inv := sphere.NewInventory()
	for _, p := range paths {
		inv.Add(ast.Path(p), scenario.Inventory[p])
	}
	return inv
}

// errCode maps a pipeline error to its taxonomy code. Outermost package
// first: sphere errors can wrap eval causes, and the wrapping context is
// the category under test.
func errCode(err error) string {
	var (
		sphereErr *sphere.Error
		graphErr  *graph.Error
		mergeErr  *merge.Error
		cfgErr    *config.Error
		loadErr   *loader.Error
		evalErr   *eval.Error
	)
	switch {
	case errors.As(err, &sphereErr):
		return string(sphereErr.Code)
	case errors.As(err, &graphErr):
		return string(graphErr.Code)
	case errors.As(err, &mergeErr):
		return string(mergeErr.Code)
	case errors.As(err, &cfgErr):
		return string(cfgErr.Code)
	case errors.As(err, &loadErr):
		return string(loadErr.Code)
	case errors.As(err, &evalErr):
		return string(evalErr.Code)
	}
	return "INTERNAL"
}
