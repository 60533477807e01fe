package sphere

import (
	"github.com/radolang/rado/ast"
	"github.com/radolang/rado/graph"
)

// checkNegativeCycles inspects nodes the optimistic phase reached but the
// real phase did not. A node stalled because something it negates was
// acquired is fine on its own: binding order decides, and the answer is
// deterministic. When such nodes block each other in a cycle no order can
// settle the answer, so the query fails instead of picking a winner.
func (q *query) checkNegativeCycles(st *state, reached1, reached2 map[ast.Path]bool) error {
	var stalled []ast.Path
	for _, n := range q.g.Nodes() {
		if reached1[n.Path] && !reached2[n.Path] {
			stalled = append(stalled, n.Path)
		}
	}
	if len(stalled) == 0 {
		return nil
	}

	incoming := make(map[ast.Path][]graph.Edge)
	for _, e := range q.g.Edges() {
		incoming[e.To] = append(incoming[e.To], e)
	}

	blocked, err := q.blockedByNegation(st, stalled, reached2, incoming)
	if err != nil {
		return err
	}
	if len(blocked) == 0 {
		return nil
	}

	// Build the negative-dependence graph over the optimistic reach: an
	// edge a -> b means reaching b raises something a's gates negate.
	var universe []ast.Path
	for _, n := range q.g.Nodes() {
		if reached1[n.Path] {
			universe = append(universe, n.Path)
		}
	}

	fns := q.g.NewEnv(nil).Fns
	negated := make(map[ast.Path]map[ast.Path]bool, len(universe))
	effects := make(map[ast.Path]map[ast.Path]bool, len(universe))
	for _, p := range universe {
		n, ok := q.g.Node(p)
		if !ok {
			continue
		}
		subjects := make(map[ast.Path]bool)
		collectNegated(q.g, fns, n.Requirement, n.Vals, subjects)
		for _, e := range incoming[p] {
			if reached1[e.From] {
				collectNegated(q.g, fns, e.Requirement, e.Vals, subjects)
			}
		}
		negated[p] = subjects
		effects[p] = q.nodeEffects(n)
	}

	blocks := make(map[ast.Path][]ast.Path, len(universe))
	for _, a := range universe {
		if len(negated[a]) == 0 {
			continue
		}
		for _, b := range universe {
			if intersects(negated[a], effects[b]) {
				blocks[a] = append(blocks[a], b)
			}
		}
	}

	for _, scc := range sccGroups(universe, blocks) {
		if len(scc) == 1 && !hasSelfLoop(scc[0], blocks) {
			continue
		}
		members := make(map[ast.Path]bool, len(scc))
		for _, p := range scc {
			members[p] = true
		}
		for _, p := range blocked {
			if members[p] {
				return &Error{
					Code:    ErrCodeNegativeCycle,
					Message: "requirements negate each other in a cycle",
					Path:    p,
					Cycle:   cycleTrail(scc, blocks),
				}
			}
		}
	}
	return nil
}

// blockedByNegation filters the stalled nodes down to those whose phase
// gap is explained by negation: some gate into the node holds under the
// final real inventory once its negated terms are relaxed. The rest
// stalled transitively and need no report of their own.
func (q *query) blockedByNegation(st *state, stalled []ast.Path, reached2 map[ast.Path]bool, incoming map[ast.Path][]graph.Edge) ([]ast.Path, error) {
	env := q.g.NewEnv(st)
	env.Optimistic = true

	var blocked []ast.Path
	for _, p := range stalled {
		n, ok := q.g.Node(p)
		if !ok {
			continue
		}
		hit, err := q.evalBool(env, n.Requirement, n.Vals, n.Path)
		if err != nil {
			return nil, err
		}
		if !hit {
			for _, e := range incoming[p] {
				if !reached2[e.From] {
					continue
				}
				got, err := q.evalBool(env, e.Requirement, e.Vals, e.Link)
				if err != nil {
					return nil, err
				}
				if got {
					hit = true
					break
				}
			}
		}
		if hit {
			blocked = append(blocked, p)
		}
	}
	return blocked, nil
}

// collectNegated gathers the inventory paths an expression reads under
// negation. Vals and function bodies are expanded so a not buried behind a
// name still registers; anything outside inventory space is ignored.
func collectNegated(g *graph.Graph, fns map[ast.Path]*ast.FnDecl, e ast.Expr, vals map[ast.Path]ast.Expr, out map[ast.Path]bool) {
	c := &negWalker{g: g, fns: fns, out: out, seenFn: make(map[ast.Path]int), seenVal: make(map[ast.Path]bool)}
	c.walk(e, vals, false)
}

type negWalker struct {
	g   *graph.Graph
	fns map[ast.Path]*ast.FnDecl
	out map[ast.Path]bool

	// seenFn records which polarities each function body was expanded
	// under; seenVal breaks self-referential val chains.
	seenFn  map[ast.Path]int
	seenVal map[ast.Path]bool
}

func (c *negWalker) walk(e ast.Expr, vals map[ast.Path]ast.Expr, neg bool) {
	switch x := e.(type) {
	case nil, *ast.NumLit, *ast.BoolLit:
	case *ast.NameExpr:
		if vals != nil {
			if def, ok := vals[x.Path]; ok && !c.seenVal[x.Path] {
				c.seenVal[x.Path] = true
				c.walk(def, vals, neg)
				delete(c.seenVal, x.Path)
				return
			}
		}
		if neg && c.g.Tracks(x.Path) {
			c.out[x.Path] = true
		}
	case *ast.NotExpr:
		c.walk(x.X, vals, true)
	case *ast.CallExpr:
		for _, a := range x.Args {
			c.walk(a, vals, neg)
		}
		fn, ok := c.fns[x.Fn]
		if !ok {
			return
		}
		bit := 1
		if neg {
			bit = 2
		}
		if c.seenFn[x.Fn]&bit != 0 {
			return
		}
		c.seenFn[x.Fn] |= bit
		c.walk(fn.Body, nil, neg)
	case *ast.BuiltinExpr:
		for _, a := range x.Args {
			c.walk(a, vals, neg)
		}
	case *ast.BinExpr:
		c.walk(x.L, vals, neg)
		c.walk(x.R, vals, neg)
	case *ast.AndExpr:
		for _, t := range x.Terms {
			c.walk(t, vals, neg)
		}
	case *ast.OrExpr:
		for _, t := range x.Terms {
			c.walk(t, vals, neg)
		}
	case *ast.IfExpr:
		c.walk(x.Cond, vals, neg)
		c.walk(x.Then, vals, neg)
		c.walk(x.Else, vals, neg)
	case *ast.MatchExpr:
		c.walk(x.Subject, vals, neg)
		for _, arm := range x.Arms {
			c.walk(arm.Body, vals, neg)
		}
	}
}

// nodeEffects gathers every inventory path a node's first visit can raise:
// flags it sets and items it yields, with acquisition fan-out expanded.
func (q *query) nodeEffects(n *graph.Node) map[ast.Path]bool {
	out := make(map[ast.Path]bool)
	for _, f := range n.Unlocks {
		out[f] = true
	}
	for _, gr := range n.Grants {
		if !gr.Clear {
			out[gr.Flag] = true
		}
	}
	for _, p := range n.Provides {
		q.itemEffects(out, p)
	}
	if placed, ok := q.placement[n.Path]; ok {
		q.itemEffects(out, placed)
		return out
	}
	for _, av := range n.Avail {
		q.itemEffects(out, av.Item)
	}
	return out
}

// itemEffects expands one acquisition into the inventory reads it can
// flip: the item itself, its group, every member behind a shared
// progressive counter, provides targets, and the item's own flag effects.
func (q *query) itemEffects(out map[ast.Path]bool, p ast.Path) {
	out[p] = true
	it, ok := q.g.Item(p)
	if !ok {
		return
	}
	if it.Group != ast.Root {
		out[it.Group] = true
		if grp, ok := q.g.Item(it.Group); ok && grp.Progressive {
			for _, m := range grp.Members {
				out[m] = true
			}
		}
	}
	if it.Kind == ast.KindItems && it.Progressive {
		for _, m := range it.Members {
			out[m] = true
		}
	}
	for _, t := range it.Provides {
		out[t] = true
	}
	for _, f := range it.Unlocks {
		out[f] = true
	}
	for _, gr := range it.Grants {
		if !gr.Clear {
			out[gr.Flag] = true
		}
	}
}

func intersects(a, b map[ast.Path]bool) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for p := range a {
		if b[p] {
			return true
		}
	}
	return false
}

func hasSelfLoop(p ast.Path, adj map[ast.Path][]ast.Path) bool {
	for _, next := range adj[p] {
		if next == p {
			return true
		}
	}
	return false
}

// sccGroups finds strongly connected components of the dependence graph,
// visiting roots in the given order so results are deterministic.
func sccGroups(order []ast.Path, adj map[ast.Path][]ast.Path) [][]ast.Path {
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

		for _, w := range adj[v] {
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

// cycleTrail reconstructs one traversal of the cycle for reporting, closed
// back on its first element.
func cycleTrail(scc []ast.Path, adj map[ast.Path][]ast.Path) []ast.Path {
	if len(scc) == 1 {
		return []ast.Path{scc[0], scc[0]}
	}

	inSCC := make(map[ast.Path]bool, len(scc))
	for _, p := range scc {
		inSCC[p] = true
	}

	start := scc[0]
	current := start
	trail := []ast.Path{current}
	visited := make(map[ast.Path]bool)

	for {
		visited[current] = true
		var next ast.Path
		for _, w := range adj[current] {
			if inSCC[w] && (!visited[w] || w == start) {
				next = w
				break
			}
		}
		if next == ast.Root {
			break
		}
		trail = append(trail, next)
		if next == start {
			break
		}
		current = next
	}
	return trail
}
