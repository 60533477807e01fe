package cli

import (
	"errors"
	"slices"

	"github.com/radolang/rado/ast"
	"github.com/radolang/rado/config"
	"github.com/radolang/rado/eval"
	"github.com/radolang/rado/graph"
	"github.com/radolang/rado/internal/loader"
	"github.com/radolang/rado/merge"
	"github.com/radolang/rado/sphere"
)

// buildGraph runs the static pipeline: load sources, resolve
// configuration under the activated configsets, fold declarations into a
// tree, and compile the logic graph.
func buildGraph(dir string, configsets []string) (*graph.Graph, error) {
	sources, err := loader.Load(dir)
	if err != nil {
		return nil, err
	}
	return analyze(sources, configsets)
}

// analyze runs the post-load stages over already loaded sources.
func analyze(sources []ast.Source, configsets []string) (*graph.Graph, error) {
	decls, err := config.Collect(sources)
	if err != nil {
		return nil, err
	}
	snap, err := config.Resolve(decls, configsets)
	if err != nil {
		return nil, err
	}
	tree, err := merge.Resolve(sources, snap)
	if err != nil {
		return nil, err
	}
	return graph.Build(tree, snap)
}

// rebuildGraph recompiles the graph under a previously recorded
// configuration snapshot instead of resolving configsets. Variant paths
// still come from the sources, since snapshots journal values only.
func rebuildGraph(dir string, values map[ast.Path]ast.Value) (*graph.Graph, error) {
	sources, err := loader.Load(dir)
	if err != nil {
		return nil, err
	}
	decls, err := config.Collect(sources)
	if err != nil {
		return nil, err
	}
	snap := config.NewSnapshot(values, decls.Variants())
	tree, err := merge.Resolve(sources, snap)
	if err != nil {
		return nil, err
	}
	return graph.Build(tree, snap)
}

// newInventory builds a query inventory from a count map, applied in
// sorted path order so identical maps always produce identical queries.
// Journaled runs depend on this: replay rebuilds the inventory from a
// map and must reproduce the recorded application order.
func newInventory(counts map[ast.Path]int64) *sphere.Inventory {
	paths := make([]ast.Path, 0, len(counts))
	for p := range counts {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	inv := sphere.NewInventory()
	for _, p := range paths {
		inv.Add(p, counts[p])
	}
	return inv
}

// errorCode maps a pipeline error to its wire code. Outermost package
// first: sphere errors can wrap eval causes, and the wrapping context is
// the category the caller acts on.
func errorCode(err error) string {
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

// flattenErrors expands a collect-all loader error list into its
// individual errors; any other error passes through as one element.
func flattenErrors(err error) []error {
	var list loader.ErrorList
	if errors.As(err, &list) {
		out := make([]error, len(list))
		for i, e := range list {
			out[i] = e
		}
		return out
	}
	return []error{err}
}

// reportError renders a pipeline error through the formatter and maps it
// to an exit status: unreadable source directories are command errors,
// everything else is an analysis failure.
func reportError(f *OutputFormatter, err error) error {
	code := errorCode(err)
	_ = f.Error(code, err.Error(), nil)
	if loader.IsNotFound(err) {
		return WrapExitError(ExitCommandError, "cannot load sources", err)
	}
	return WrapExitError(ExitFailure, code, err)
}
