package merge

import (
	"github.com/radolang/rado/ast"
	"github.com/radolang/rado/config"
)

// Tree is a fully merged declaration tree. It is immutable: Extend builds
// a new tree and leaves the receiver untouched, so old snapshots stay
// valid for concurrent readers.
type Tree struct {
	sources []ast.Source
	cfg     *config.Snapshot
	nodes   map[ast.Path]*node
	order   []ast.Path
	roots   []ast.Path
	start   StartState
}

// Node is the read view of one merged declaration.
type Node struct {
	Path     ast.Path
	Kind     ast.DeclKind
	Decl     ast.Decl
	Order    int
	Parent   ast.Path
	Children []ast.Path
	Props    Props

	// Link fields, meaningful when Kind is KindLink.
	Dir       ast.LinkDir
	Endpoints []ast.Path
}

// Props is the merged property view of a declaration body. Requirement and
// visibility occurrences conjoin; list properties reflect every applied
// patch; scalar properties hold the last write.
type Props struct {
	Requires    []ast.Expr
	Visible     []ast.Expr
	Unlocks     []ast.Path
	Grants      []ast.GrantEntry
	Provides    []ast.Path
	Tags        []ast.Path
	Aliases     []ast.Name
	Vals        []ValBinding
	Progressive bool
	Consumable  bool
	Max         ast.Expr // nil means uncapped
	Avail       []ast.AvailEntry
	StartWith   []ast.StartItem
	StartIn     ast.Path // empty means unset
}

// ValBinding is one declaration-local named expression, in binding order.
type ValBinding struct {
	Name string
	Expr ast.Expr
}

// StartState is the tree-level starting contribution: root-level start
// properties, folded in source order.
type StartState struct {
	Region ast.Path // last write wins; empty means unset
	Items  []ast.StartItem
}

// Node returns the merged declaration at a path. Tombstoned and never-bound
// paths both report false.
func (t *Tree) Node(p ast.Path) (*Node, bool) {
	n, ok := t.nodes[p]
	if !ok || n.tombstone {
		return nil, false
	}
	return n.view(), true
}

// Exists reports whether a path resolves to a live declaration.
func (t *Tree) Exists(p ast.Path) bool {
	n, ok := t.nodes[p]
	return ok && !n.tombstone
}

// Tombstoned reports whether a path was deleted. Deleted paths stay
// occupied: they neither resolve nor accept rebinding.
func (t *Tree) Tombstoned(p ast.Path) bool {
	n, ok := t.nodes[p]
	return ok && n.tombstone
}

// Nodes returns every live declaration in binding order.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, 0, len(t.order))
	for _, p := range t.order {
		if n, ok := t.nodes[p]; ok && !n.tombstone {
			out = append(out, n.view())
		}
	}
	return out
}

// Roots returns the live top-level declarations in binding order.
func (t *Tree) Roots() []*Node {
	out := make([]*Node, 0, len(t.roots))
	for _, p := range t.roots {
		if n, ok := t.nodes[p]; ok && !n.tombstone {
			out = append(out, n.view())
		}
	}
	return out
}

// Start returns the tree-level starting contributions.
func (t *Tree) Start() StartState {
	return t.start
}

// Sources returns the source list this tree was folded from, in order.
func (t *Tree) Sources() []ast.Source {
	return t.sources
}

// Config returns the snapshot the fold evaluated conditionals against.
func (t *Tree) Config() *config.Snapshot {
	return t.cfg
}

// node is the fold-internal representation.
type node struct {
	path      ast.Path
	kind      ast.DeclKind
	decl      ast.Decl
	order     int
	parent    ast.Path
	tombstone bool
	children  []ast.Path
	props     propState
	dir       ast.LinkDir
	endpoints listState[ast.Path]
}

// propState accumulates property writes during the fold.
type propState struct {
	requires    []ast.Expr
	visible     []ast.Expr
	unlocks     listState[ast.Path]
	grants      listState[ast.GrantEntry]
	provides    listState[ast.Path]
	tags        listState[ast.Path]
	aliases     listState[ast.Name]
	vals        []ValBinding
	progressive bool
	consumable  bool
	max         ast.Expr
	avail       listState[ast.AvailEntry]
	startWith   listState[ast.StartItem]
	startIn     ast.Path
}

func (n *node) view() *Node {
	// The fold removes freed and tombstoned paths from parent child lists,
	// so children here are live and in binding order.
	return &Node{
		Path:      n.path,
		Kind:      n.kind,
		Decl:      n.decl,
		Order:     n.order,
		Parent:    n.parent,
		Children:  n.children,
		Props:     n.props.freeze(),
		Dir:       n.dir,
		Endpoints: n.endpoints.items,
	}
}

func (s *propState) freeze() Props {
	return Props{
		Requires:    s.requires,
		Visible:     s.visible,
		Unlocks:     s.unlocks.items,
		Grants:      s.grants.items,
		Provides:    s.provides.items,
		Tags:        s.tags.items,
		Aliases:     s.aliases.items,
		Vals:        s.vals,
		Progressive: s.progressive,
		Consumable:  s.consumable,
		Max:         s.max,
		Avail:       s.avail.items,
		StartWith:   s.startWith.items,
		StartIn:     s.startIn,
	}
}

// setVal binds a local val; rebinding the same name takes the last write.
func (s *propState) setVal(name string, expr ast.Expr) {
	for i := range s.vals {
		if s.vals[i].Name == name {
			s.vals[i].Expr = expr
			return
		}
	}
	s.vals = append(s.vals, ValBinding{Name: name, Expr: expr})
}
