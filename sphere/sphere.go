package sphere

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/radolang/rado/ast"
	"github.com/radolang/rado/eval"
	"github.com/radolang/rado/graph"
)

// DefaultMaxSteps bounds requirement evaluations per query. The fixed
// point is quadratic in graph size at worst, so the default leaves ample
// room for large graphs while still catching runaway queries.
const DefaultMaxSteps = 1 << 20

// Option configures an accessibility query.
type Option func(*query)

// WithMaxSteps overrides the evaluation step budget.
func WithMaxSteps(n int) Option {
	return func(q *query) {
		q.maxSteps = n
	}
}

// WithPlacement supplies an item placement: visiting a placed location
// yields its assigned item instead of the location's declared supply.
// Locations without an entry keep their avail schedule.
func WithPlacement(placement map[ast.Path]ast.Path) Option {
	return func(q *query) {
		q.placement = placement
	}
}

// WithLogger installs a logger for query diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(q *query) {
		q.log = logger
	}
}

// Access is one node's query outcome.
type Access struct {
	// Accessible reports whether the real phase reached the node.
	Accessible bool

	// Visible reports whether the node's visibility expression holds
	// under the final inventory. Visibility defaults to the requirement,
	// so an ungated node is visible exactly when its requirement holds.
	Visible bool
}

// Result is a completed accessibility query.
type Result struct {
	// Nodes maps every region and location to its outcome.
	Nodes map[ast.Path]Access

	// Inventory is the real phase's final inventory: the starting
	// contribution plus everything reached nodes unlocked and yielded.
	Inventory *Inventory

	// Sweeps and Steps count fixed-point iterations and requirement
	// evaluations across both phases.
	Sweeps int
	Steps  int
}

// At returns a node's outcome; absent paths report neither accessible nor
// visible.
func (r *Result) At(p ast.Path) Access {
	return r.Nodes[p]
}

// Accessible reports whether the real phase reached the path.
func (r *Result) Accessible(p ast.Path) bool {
	return r.Nodes[p].Accessible
}

// Visible reports whether the path is visible under the final inventory.
func (r *Result) Visible(p ast.Path) bool {
	return r.Nodes[p].Visible
}

// Reachable computes accessibility and visibility for every node in the
// graph, starting from the graph's start state plus the given inventory.
//
// The query runs the two-phase fixed point: an optimistic phase with
// negated terms relaxed bounds what is possibly reachable, then the real
// phase recomputes exactly within that bound. Circular negative
// dependence among requirements is reported as a negative-cycle error.
// The graph is never mutated; concurrent calls over one graph are safe.
func Reachable(ctx context.Context, g *graph.Graph, inv *Inventory, opts ...Option) (*Result, error) {
	q := &query{
		g:        g,
		maxSteps: DefaultMaxSteps,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	if err := q.checkPlacement(); err != nil {
		return nil, err
	}

	providers := buildProviders(g)

	seed := func(optimistic bool) (*state, error) {
		st := newState(g, providers, optimistic)
		for _, sc := range g.Start().Items {
			if it, ok := g.Item(sc.Item); ok {
				st.acquire(it, sc.Count)
			} else {
				st.setFlag(sc.Item)
			}
		}
		if inv != nil {
			for _, p := range inv.Paths() {
				if err := st.addInitial(p, inv.Count(p)); err != nil {
					return nil, err
				}
			}
		}
		return st, nil
	}

	optimistic, err := seed(true)
	if err != nil {
		return nil, err
	}
	reached1, err := q.expand(ctx, optimistic, true, nil)
	if err != nil {
		return nil, err
	}

	real, err := seed(false)
	if err != nil {
		return nil, err
	}
	reached2, err := q.expand(ctx, real, false, reached1)
	if err != nil {
		return nil, err
	}

	if err := q.checkNegativeCycles(real, reached1, reached2); err != nil {
		return nil, err
	}

	res := &Result{
		Nodes:     make(map[ast.Path]Access, len(g.Nodes())),
		Inventory: real.snapshot(),
	}
	env := g.NewEnv(real)
	for _, n := range g.Nodes() {
		visible, err := q.evalBool(env, n.Visibility, n.Vals, n.Path)
		if err != nil {
			return nil, err
		}
		res.Nodes[n.Path] = Access{
			Accessible: reached2[n.Path],
			Visible:    visible,
		}
	}
	res.Sweeps = q.sweeps
	res.Steps = q.steps

	q.log.Debug("reachable",
		slog.Int("nodes", len(res.Nodes)),
		slog.Int("accessible", len(reached2)),
		slog.Int("sweeps", q.sweeps),
		slog.Int("steps", q.steps))
	return res, nil
}

type query struct {
	g         *graph.Graph
	maxSteps  int
	placement map[ast.Path]ast.Path
	log       *slog.Logger

	steps  int
	sweeps int
}

// checkPlacement validates placement entries before any expansion: placed
// locations must exist and be placeable, placed paths must name concrete
// items or progressive groups.
func (q *query) checkPlacement() error {
	if len(q.placement) == 0 {
		return nil
	}
	locs := make([]ast.Path, 0, len(q.placement))
	for loc := range q.placement {
		locs = append(locs, loc)
	}
	slices.Sort(locs)

	for _, loc := range locs {
		n, ok := q.g.Node(loc)
		if !ok {
			return &Error{
				Code:    ErrCodeUnknownReference,
				Message: "placement names a location the graph does not have",
				Path:    loc,
			}
		}
		if !n.Placeable {
			return &Error{
				Code:    ErrCodeSchemaViolation,
				Message: "placement target is not a placeable location",
				Path:    loc,
			}
		}
		placed := q.placement[loc]
		it, ok := q.g.Item(placed)
		if !ok {
			return &Error{
				Code:    ErrCodeUnknownReference,
				Message: "placement places a path that is not an item",
				Path:    placed,
			}
		}
		if it.Kind == ast.KindItems && !it.Progressive {
			return &Error{
				Code:    ErrCodeSchemaViolation,
				Message: "placement cannot place a plain item group",
				Path:    placed,
			}
		}
	}
	return nil
}

// expand runs one phase of the fixed point. Each sweep scans unreached
// nodes in binding order and then link edges in binding order, marking
// everything whose gate holds and applying its effects immediately;
// sweeps repeat until one adds nothing. A non-nil within set restricts
// expansion to nodes the optimistic phase reached.
func (q *query) expand(ctx context.Context, st *state, optimistic bool, within map[ast.Path]bool) (map[ast.Path]bool, error) {
	env := q.g.NewEnv(st)
	env.Optimistic = optimistic

	reached := make(map[ast.Path]bool)
	if r := q.g.Start().Region; r != ast.Root {
		if within == nil || within[r] {
			q.enter(st, reached, r, optimistic)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, &Error{Code: ErrCodeCanceled, Message: "query canceled between sweeps", Err: err}
		}
		q.sweeps++
		progress := false

		for _, n := range q.g.Nodes() {
			if reached[n.Path] || (within != nil && !within[n.Path]) {
				continue
			}
			ok, err := q.evalBool(env, n.Requirement, n.Vals, n.Path)
			if err != nil {
				return nil, err
			}
			if ok {
				q.enter(st, reached, n.Path, optimistic)
				progress = true
			}
		}

		for _, e := range q.g.Edges() {
			if !reached[e.From] || reached[e.To] {
				continue
			}
			if within != nil && !within[e.To] {
				continue
			}
			ok, err := q.evalBool(env, e.Requirement, e.Vals, e.Link)
			if err != nil {
				return nil, err
			}
			if ok {
				q.enter(st, reached, e.To, optimistic)
				progress = true
			}
		}

		if !progress {
			return reached, nil
		}
	}
}

// enter marks a node reached and applies its effects, then walks up the
// containment chain: standing in a node means standing in every enclosing
// region, and the way back up is never gated.
func (q *query) enter(st *state, reached map[ast.Path]bool, p ast.Path, optimistic bool) {
	for p != ast.Root && !reached[p] {
		n, ok := q.g.Node(p)
		if !ok {
			return
		}
		reached[p] = true
		q.applyEffects(st, n, optimistic)
		p = n.Parent
	}
}

// applyEffects applies a node's first-visit effects: unlock flags, grant
// sets and clears, provided acquisitions, then the site's yield. Clears
// are anti-monotone and only apply in the real phase.
func (q *query) applyEffects(st *state, n *graph.Node, optimistic bool) {
	for _, f := range n.Unlocks {
		st.setFlag(f)
	}
	for _, gr := range n.Grants {
		if gr.Clear {
			if !optimistic {
				st.clearFlag(gr.Flag)
			}
			continue
		}
		st.setFlag(gr.Flag)
	}
	for _, p := range n.Provides {
		if it, ok := q.g.Item(p); ok {
			st.acquire(it, 1)
		} else {
			st.setFlag(p)
		}
	}

	if placed, ok := q.placement[n.Path]; ok {
		if it, ok := q.g.Item(placed); ok {
			st.acquire(it, 1)
		}
		return
	}
	for _, av := range n.Avail {
		st.yield(av)
	}
}

// evalBool evaluates one gate against the step budget.
func (q *query) evalBool(env *eval.Env, e ast.Expr, vals map[ast.Path]ast.Expr, site ast.Path) (bool, error) {
	q.steps++
	if q.steps > q.maxSteps {
		return false, &Error{
			Code:    ErrCodeBudgetExceeded,
			Message: "step budget spent before the fixed point converged",
			Steps:   q.steps,
			Limit:   q.maxSteps,
		}
	}
	env.Vals = vals
	ok, err := eval.EvalBool(e, env)
	if err != nil {
		return false, fmt.Errorf("evaluate gate at %s: %w", site, err)
	}
	return ok, nil
}
