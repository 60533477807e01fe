package graph

import (
	"github.com/radolang/rado/ast"
	"github.com/radolang/rado/config"
	"github.com/radolang/rado/eval"
)

// Graph is a compiled logic graph. It is immutable once built; queries
// never mutate it, so a single graph may serve concurrent accessibility
// queries without locking.
type Graph struct {
	cfg      *config.Snapshot
	nodes    map[ast.Path]*Node
	order    []ast.Path
	items    map[ast.Path]*Item
	itemPick []ast.Path
	edges    []Edge
	start    Start
	fns      map[ast.Path]*ast.FnDecl
	variants map[ast.Path]bool
	idents   map[ast.Path]bool
	choices  map[ast.Path]ast.Expr
	flags    map[ast.Path]bool
	flagPick []ast.Path
	print    string
}

// Node is one compiled region or location.
type Node struct {
	Path     ast.Path
	Kind     ast.DeclKind
	Parent   ast.Path // containing region; Root for top level
	Children []ast.Path

	// Requirement is the node's effective requirement: its own requires
	// clauses conjoined with every ancestor's. Never nil; an ungated node
	// compiles to the true literal.
	Requirement ast.Expr

	// Visibility is the node's own visible clauses conjoined. When a node
	// declares none it defaults to Requirement, so an ungated default is
	// visible exactly when accessible.
	Visibility ast.Expr

	// Placeable marks locations that can hold a placed item.
	Placeable bool

	// Avail is the resolved supply schedule: which items this site can
	// yield and in what finite or unlimited quantity.
	Avail []Avail

	// Effects applied when the node is first reached.
	Provides []ast.Path
	Unlocks  []ast.Path
	Grants   []Grant

	// Classification and display metadata.
	Tags    []ast.Path
	Aliases []ast.Name

	// Vals is the node's lexical val scope: its own val bindings layered
	// over every ancestor's, inner shadowing outer.
	Vals map[ast.Path]ast.Expr
}

// Avail is one resolved supply entry.
type Avail struct {
	Item      ast.Path
	Count     int64 // meaningful when Unlimited is false
	Unlimited bool
}

// Grant is one flag effect: set, or clear when Clear is true. Clears only
// take effect in the real phase of the accessibility fixed point.
type Grant struct {
	Clear bool
	Flag  ast.Path
}

// Item is one compiled item or item group.
type Item struct {
	Path ast.Path
	Kind ast.DeclKind // KindItem or KindItems

	// Group is the owning item group, when the item is declared inside
	// one; empty otherwise.
	Group ast.Path

	// Tier is the item's position within a progressive group, or -1. Tier
	// k of a progressive group reads as held once the group's shared
	// counter reaches k+1.
	Tier int

	// Progressive and Members describe groups. A progressive group pools
	// its members behind one counter; a plain group reads as the sum of
	// its members.
	Progressive bool
	Members     []ast.Path

	// Consumable items draw on a shared remaining-uses pool across every
	// site that supplies them.
	Consumable bool

	// Max caps how many copies can be held; 0 means uncapped.
	Max int64

	// Effects applied when a copy is acquired.
	Provides []ast.Path
	Unlocks  []ast.Path
	Grants   []Grant

	// Classification and display metadata.
	Tags    []ast.Path
	Aliases []ast.Name

	// Pool is the finite supply across all sites: summed for
	// non-consumables, the largest single-site quantity for consumables,
	// whose sites share one stock. PoolUnlimited is set when any site
	// supplies without bound.
	Pool          int64
	PoolUnlimited bool

	// Vals is the item's lexical val scope.
	Vals map[ast.Path]ast.Expr
}

// Edge is one directed traversal edge compiled from a link. A bidirectional
// link yields one edge per direction.
type Edge struct {
	Link        ast.Path
	From        ast.Path
	To          ast.Path
	Requirement ast.Expr
	Vals        map[ast.Path]ast.Expr
}

// Start is the compiled starting state.
type Start struct {
	// Region is the starting region; Root when the tree declares no
	// regions and no start in.
	Region ast.Path

	// Items is the initial inventory contribution, in binding order.
	Items []StartCount
}

// StartCount is one starting inventory entry.
type StartCount struct {
	Item  ast.Path
	Count int64
}

// Node returns the compiled node at a path.
func (g *Graph) Node(p ast.Path) (*Node, bool) {
	n, ok := g.nodes[p]
	return n, ok
}

// Nodes returns every compiled node in binding order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, p := range g.order {
		out[i] = g.nodes[p]
	}
	return out
}

// Item returns the compiled item record at a path.
func (g *Graph) Item(p ast.Path) (*Item, bool) {
	it, ok := g.items[p]
	return it, ok
}

// Items returns every compiled item record in binding order.
func (g *Graph) Items() []*Item {
	out := make([]*Item, len(g.itemPick))
	for i, p := range g.itemPick {
		out[i] = g.items[p]
	}
	return out
}

// Edges returns the compiled link edges in binding order. Containment is
// not listed here; it is implied by each node's Parent and Children.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Start returns the compiled starting state.
func (g *Graph) Start() Start {
	return g.start
}

// Config returns the snapshot the graph was compiled against.
func (g *Graph) Config() *config.Snapshot {
	return g.cfg
}

// RequirementFor returns the effective requirement gating a node or link
// path, for display and analysis tooling.
func (g *Graph) RequirementFor(p ast.Path) (ast.Expr, error) {
	if n, ok := g.nodes[p]; ok {
		return n.Requirement, nil
	}
	for i := range g.edges {
		if g.edges[i].Link == p {
			return g.edges[i].Requirement, nil
		}
	}
	return nil, &Error{
		Code:    ErrCodeUnresolvedPath,
		Message: "no node or link at path",
		Path:    p,
	}
}

// Tracks reports whether a path lives in inventory space: an item, an item
// group, or an unlock flag.
func (g *Graph) Tracks(p ast.Path) bool {
	if _, ok := g.items[p]; ok {
		return true
	}
	return g.flags[p]
}

// Flags returns every unlock flag path introduced by the graph's unlock
// and grants effects, in first-appearance order.
func (g *Graph) Flags() []ast.Path {
	out := make([]ast.Path, len(g.flagPick))
	copy(out, g.flagPick)
	return out
}

// NewEnv builds the evaluation environment the graph's expressions assume:
// resolved configuration, functions, enum variants, declaration
// identities, random choices, and the given inventory view. Callers attach
// per-declaration Vals before evaluating a node's expressions.
func (g *Graph) NewEnv(view eval.ItemView) *eval.Env {
	return &eval.Env{
		Config:   g.cfg.Values(),
		Fns:      g.fns,
		Variants: g.variants,
		Items:    view,
		Idents:   g.idents,
		Choices:  g.choices,
	}
}

// Fingerprint returns a stable hex digest of the compiled graph: nodes,
// items, edges, start state, random choices, and the configuration it was
// compiled against. Equal fingerprints mean semantically identical graphs.
func (g *Graph) Fingerprint() string {
	return g.print
}
