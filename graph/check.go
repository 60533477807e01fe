package graph

import (
	"fmt"

	"github.com/radolang/rado/ast"
)

// scope carries the names visible at one expression site beyond the
// graph-wide universe: the declaration's val bindings and, inside function
// bodies, the parameter frame.
type scope struct {
	vals   map[ast.Path]ast.Expr
	params map[string]bool
}

// checkExpr verifies that every reference in an expression resolves and
// that calls and builtins are statically well-formed. The first failure
// wins; the walk stops there.
func (b *builder) checkExpr(e ast.Expr, site ast.Path, sc scope) error {
	var fail error
	ast.WalkExpr(e, func(sub ast.Expr) bool {
		switch x := sub.(type) {
		case *ast.NameExpr:
			if !b.resolves(x.Path, sc) {
				fail = b.unresolved(x.Path, site)
			}
		case *ast.CallExpr:
			fn, ok := b.g.fns[x.Fn]
			if !ok {
				fail = b.unresolved(x.Fn, site)
				break
			}
			if len(x.Args) != len(fn.Params) {
				fail = &Error{
					Code: ErrCodeSchemaViolation,
					Message: fmt.Sprintf("call passes %d arguments, %s declares %d",
						len(x.Args), x.Fn, len(fn.Params)),
					Path: x.Fn,
					Site: site,
				}
			}
		case *ast.BuiltinExpr:
			switch x.Op {
			case ast.BuiltinCount:
				for _, a := range x.Args {
					if _, ok := a.(*ast.NameExpr); !ok {
						fail = &Error{
							Code:    ErrCodeSchemaViolation,
							Message: "count arguments must be item names",
							Site:    site,
						}
						break
					}
				}
			case ast.BuiltinMin, ast.BuiltinMax:
				if len(x.Args) == 0 {
					fail = &Error{
						Code:    ErrCodeSchemaViolation,
						Message: fmt.Sprintf("%s needs at least one argument", x.Op),
						Site:    site,
					}
				}
			}
		case *ast.MatchExpr:
			for _, arm := range x.Arms {
				if !b.resolves(arm.Pattern, sc) {
					fail = b.unresolved(arm.Pattern, site)
					break
				}
			}
		}
		return fail == nil
	})
	return fail
}

func (b *builder) resolves(p ast.Path, sc scope) bool {
	if sc.params[string(p)] {
		return true
	}
	if sc.vals != nil {
		if _, ok := sc.vals[p]; ok {
			return true
		}
	}
	return b.known[p]
}

func (b *builder) unresolved(p, site ast.Path) error {
	return &Error{
		Code:    ErrCodeUnresolvedPath,
		Message: "reference does not resolve",
		Path:    p,
		Site:    site,
	}
}

// checkRequirementRoots rejects requirement clauses that are statically
// known to be non-boolean: a bare number or an arithmetic expression at
// the root.
func (b *builder) checkRequirementRoots(reqs []ast.Expr, site ast.Path) error {
	for _, e := range reqs {
		numeric := false
		switch x := e.(type) {
		case *ast.NumLit:
			numeric = true
		case *ast.BinExpr:
			switch x.Op {
			case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
				numeric = true
			}
		}
		if numeric {
			return &Error{
				Code:    ErrCodeSchemaViolation,
				Message: "requirement must be a boolean expression",
				Site:    site,
			}
		}
	}
	return nil
}

// checkFunctionCycles rejects recursion in the function call graph. The
// graph maps each function to the functions its body calls; Tarjan's
// algorithm finds strongly connected components, and any component larger
// than one function, or a function calling itself, is a cycle.
func (b *builder) checkFunctionCycles() error {
	calls := make(map[ast.Path][]ast.Path, len(b.fnOrder))
	for _, p := range b.fnOrder {
		calls[p] = callTargets(b.g.fns[p].Body, b.g.fns)
	}

	sccs := tarjanSCC(b.fnOrder, calls)
	for _, scc := range sccs {
		if len(scc) > 1 || hasSelfLoop(scc[0], calls) {
			return &Error{
				Code:    ErrCodeRecursiveFunction,
				Message: "function definitions form a call cycle",
				Path:    scc[0],
				Cycle:   cyclePath(scc, calls),
			}
		}
	}
	return nil
}

// callTargets collects the function paths an expression body calls, in
// first-appearance order.
func callTargets(body ast.Expr, fns map[ast.Path]*ast.FnDecl) []ast.Path {
	var out []ast.Path
	seen := make(map[ast.Path]bool)
	ast.WalkExpr(body, func(sub ast.Expr) bool {
		if call, ok := sub.(*ast.CallExpr); ok {
			if _, isFn := fns[call.Fn]; isFn && !seen[call.Fn] {
				seen[call.Fn] = true
				out = append(out, call.Fn)
			}
		}
		return true
	})
	return out
}

func hasSelfLoop(p ast.Path, calls map[ast.Path][]ast.Path) bool {
	for _, q := range calls[p] {
		if q == p {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components of the call graph,
// visiting roots in the given order so results are deterministic.
func tarjanSCC(order []ast.Path, calls map[ast.Path][]ast.Path) [][]ast.Path {
	var (
		index   = 0
		stack   []ast.Path
		indices = make(map[ast.Path]int)
		lowlink = make(map[ast.Path]int)
		onStack = make(map[ast.Path]bool)
		sccs    [][]ast.Path
	)

	var strongConnect func(ast.Path)
	strongConnect = func(v ast.Path) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range calls[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []ast.Path
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, p := range order {
		if _, visited := indices[p]; !visited {
			strongConnect(p)
		}
	}
	return sccs
}

// cyclePath reconstructs one traversal of the cycle for reporting, closed
// back on its first element: [f, g, f].
func cyclePath(scc []ast.Path, calls map[ast.Path][]ast.Path) []ast.Path {
	if len(scc) == 1 {
		return []ast.Path{scc[0], scc[0]}
	}

	inSCC := make(map[ast.Path]bool, len(scc))
	for _, p := range scc {
		inSCC[p] = true
	}

	start := scc[0]
	current := start
	path := []ast.Path{current}
	visited := make(map[ast.Path]bool)

	for {
		visited[current] = true
		var next ast.Path
		for _, q := range calls[current] {
			if inSCC[q] && (!visited[q] || q == start) {
				next = q
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}
