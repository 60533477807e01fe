package graph

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/radolang/rado/ast"
	"github.com/radolang/rado/config"
	"github.com/radolang/rado/eval"
	"github.com/radolang/rado/merge"
)

// BuildOption configures a graph build.
type BuildOption func(*builder)

// WithRandomChoices selects the alternative each random declaration takes,
// by index into its choice list. Declarations without an entry take index
// zero; an out-of-range index or an unknown path fails the build.
func WithRandomChoices(picks map[ast.Path]int) BuildOption {
	return func(b *builder) {
		b.picks = picks
	}
}

// WithLogger installs a logger for build diagnostics.
func WithLogger(logger *slog.Logger) BuildOption {
	return func(b *builder) {
		b.log = logger
	}
}

// Build compiles a merged tree and a configuration snapshot into a logic
// graph. The build is atomic: the first static error aborts it and no
// partial graph escapes. A nil snapshot falls back to the one the tree was
// folded against.
func Build(tree *merge.Tree, cfg *config.Snapshot, opts ...BuildOption) (*Graph, error) {
	if cfg == nil {
		cfg = tree.Config()
	}
	b := &builder{
		tree: tree,
		cfg:  cfg,
		log:  slog.Default(),
		g: &Graph{
			cfg:      cfg,
			nodes:    make(map[ast.Path]*Node),
			items:    make(map[ast.Path]*Item),
			fns:      make(map[ast.Path]*ast.FnDecl),
			variants: make(map[ast.Path]bool),
			idents:   make(map[ast.Path]bool),
			choices:  make(map[ast.Path]ast.Expr),
			flags:    make(map[ast.Path]bool),
		},
		known: make(map[ast.Path]bool),
	}
	for _, opt := range opts {
		opt(b)
	}

	decls := tree.Nodes()
	if err := b.collect(decls); err != nil {
		return nil, err
	}
	if err := b.chooseRandoms(decls); err != nil {
		return nil, err
	}
	if err := b.compile(decls); err != nil {
		return nil, err
	}
	if err := b.compileLinks(); err != nil {
		return nil, err
	}
	b.resolvePools()
	if err := b.compileStart(decls); err != nil {
		return nil, err
	}
	if err := b.checkFunctionCycles(); err != nil {
		return nil, err
	}

	print, err := fingerprint(b.g)
	if err != nil {
		return nil, err
	}
	b.g.print = print

	b.log.Debug("graph built",
		slog.Int("nodes", len(b.g.order)),
		slog.Int("items", len(b.g.itemPick)),
		slog.Int("edges", len(b.g.edges)),
		slog.String("fingerprint", print))
	return b.g, nil
}

type builder struct {
	tree  *merge.Tree
	cfg   *config.Snapshot
	log   *slog.Logger
	picks map[ast.Path]int

	g       *Graph
	known   map[ast.Path]bool
	links   []*merge.Node
	fnOrder []ast.Path
	randoms []*merge.Node
}

// collect registers every declared path in its resolution space and
// gathers the flag universe before any expression is checked. Flags have
// no declaration of their own; listing one in an unlock or grants property
// introduces it.
func (b *builder) collect(decls []*merge.Node) error {
	for _, d := range decls {
		switch d.Kind {
		case ast.KindRegion, ast.KindLocation:
			if err := b.checkNesting(d, "inside a region or at top level", ast.KindRegion); err != nil {
				return err
			}
			b.known[d.Path] = true
			b.g.idents[d.Path] = true
		case ast.KindItem:
			if err := b.checkNesting(d, "inside an item group or at top level", ast.KindItems); err != nil {
				return err
			}
			b.known[d.Path] = true
		case ast.KindItems:
			if err := b.checkNesting(d, "at top level"); err != nil {
				return err
			}
			b.known[d.Path] = true
		case ast.KindLink:
			if err := b.checkNesting(d, "inside a region or location", ast.KindRegion, ast.KindLocation); err != nil {
				return err
			}
			if d.Parent == ast.Root {
				return &Error{
					Code:    ErrCodeSchemaViolation,
					Message: "link needs an enclosing region or location",
					Path:    d.Path,
				}
			}
			b.links = append(b.links, d)
		case ast.KindFn:
			b.g.fns[d.Path] = d.Decl.(*ast.FnDecl)
			b.fnOrder = append(b.fnOrder, d.Path)
		case ast.KindEnum:
			enum := d.Decl.(*ast.EnumDecl)
			for _, v := range enum.Variants {
				vp := ast.JoinPath(d.Path, v.Ident)
				b.g.variants[vp] = true
				b.known[vp] = true
			}
		case ast.KindRandom:
			b.randoms = append(b.randoms, d)
			b.known[d.Path] = true
		case ast.KindConfig, ast.KindConfigEnum, ast.KindConfigset:
			// Resolved by the configuration snapshot.
		}

		for _, p := range d.Props.Unlocks {
			b.addFlag(p)
		}
		for _, gr := range d.Props.Grants {
			b.addFlag(gr.Target)
		}
	}

	for p := range b.cfg.Values() {
		b.known[p] = true
	}
	for p := range b.cfg.Variants() {
		b.g.variants[p] = true
		b.known[p] = true
	}
	return nil
}

func (b *builder) addFlag(p ast.Path) {
	if !b.g.flags[p] {
		b.g.flags[p] = true
		b.g.flagPick = append(b.g.flagPick, p)
		b.known[p] = true
	}
}

// checkNesting enforces where a declaration kind may appear. Top level is
// always allowed; otherwise the parent's kind must be one of the listed
// kinds.
func (b *builder) checkNesting(d *merge.Node, want string, kinds ...ast.DeclKind) error {
	if d.Parent == ast.Root {
		return nil
	}
	parent, ok := b.tree.Node(d.Parent)
	if ok {
		for _, k := range kinds {
			if parent.Kind == k {
				return nil
			}
		}
	}
	return &Error{
		Code:    ErrCodeSchemaViolation,
		Message: fmt.Sprintf("%s declarations belong %s", d.Kind, want),
		Path:    d.Path,
	}
}

func (b *builder) chooseRandoms(decls []*merge.Node) error {
	for p := range b.picks {
		if _, ok := b.tree.Node(p); !ok {
			return &Error{
				Code:    ErrCodeSchemaViolation,
				Message: "random choice names an unknown declaration",
				Path:    p,
			}
		}
	}
	for _, d := range b.randoms {
		decl := d.Decl.(*ast.RandomDecl)
		if len(decl.Choices) == 0 {
			return &Error{
				Code:    ErrCodeSchemaViolation,
				Message: "random declaration has no alternatives",
				Path:    d.Path,
			}
		}
		idx := b.picks[d.Path]
		if idx < 0 || idx >= len(decl.Choices) {
			return &Error{
				Code: ErrCodeSchemaViolation,
				Message: fmt.Sprintf("random choice %d out of range, declaration has %d alternatives",
					idx, len(decl.Choices)),
				Path: d.Path,
			}
		}
		b.g.choices[d.Path] = decl.Choices[idx]
	}
	return nil
}

// compile processes declarations in binding order; parents always precede
// their descendants, so inherited requirement and val chains are ready
// when a child compiles.
func (b *builder) compile(decls []*merge.Node) error {
	for _, d := range decls {
		var err error
		switch d.Kind {
		case ast.KindRegion, ast.KindLocation:
			err = b.compileNode(d)
		case ast.KindItem, ast.KindItems:
			err = b.compileItem(d)
		case ast.KindFn:
			err = b.checkFn(d)
		case ast.KindRandom:
			err = b.checkRandom(d)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) compileNode(d *merge.Node) error {
	props := d.Props
	if props.Progressive || props.Consumable || props.Max != nil {
		return &Error{
			Code:    ErrCodeSchemaViolation,
			Message: "progressive, consumable, and max apply to items",
			Path:    d.Path,
		}
	}
	if len(props.StartWith) > 0 || props.StartIn != "" {
		return &Error{
			Code:    ErrCodeSchemaViolation,
			Message: "start properties belong at top level",
			Path:    d.Path,
		}
	}

	var parent *Node
	if d.Parent != ast.Root {
		parent = b.g.nodes[d.Parent]
	}

	n := &Node{
		Path:      d.Path,
		Kind:      d.Kind,
		Parent:    d.Parent,
		Children:  clonePaths(d.Children),
		Placeable: d.Kind == ast.KindLocation,
		Vals:      b.valScope(parent, props.Vals),
		Tags:      props.Tags,
		Aliases:   props.Aliases,
	}

	var inherited ast.Expr
	if parent != nil {
		inherited = parent.Requirement
	}
	n.Requirement = conjoin(inherited, props.Requires)
	if len(props.Visible) > 0 {
		n.Visibility = conjoin(nil, props.Visible)
	} else {
		n.Visibility = n.Requirement
	}

	sc := scope{vals: n.Vals}
	if err := b.checkRequirementRoots(props.Requires, d.Path); err != nil {
		return err
	}
	for _, e := range props.Requires {
		if err := b.checkExpr(e, d.Path, sc); err != nil {
			return err
		}
	}
	for _, e := range props.Visible {
		if err := b.checkExpr(e, d.Path, sc); err != nil {
			return err
		}
	}
	for _, v := range props.Vals {
		if err := b.checkExpr(v.Expr, d.Path, sc); err != nil {
			return err
		}
	}

	avail, err := b.resolveAvail(props.Avail, d.Path, n.Vals)
	if err != nil {
		return err
	}
	n.Avail = avail

	n.Provides = props.Provides
	n.Unlocks = props.Unlocks
	n.Grants = compileGrants(props.Grants)
	if err := b.checkEffects(n.Provides, d.Path); err != nil {
		return err
	}

	b.g.nodes[d.Path] = n
	b.g.order = append(b.g.order, d.Path)
	return nil
}

func (b *builder) compileItem(d *merge.Node) error {
	props := d.Props
	if len(props.Requires) > 0 || len(props.Visible) > 0 {
		return &Error{
			Code:    ErrCodeSchemaViolation,
			Message: "requires and visible apply to regions, locations, and links",
			Path:    d.Path,
		}
	}
	if len(props.Avail) > 0 {
		return &Error{
			Code:    ErrCodeSchemaViolation,
			Message: "avail declares a site's supply, not an item's",
			Path:    d.Path,
		}
	}
	if len(props.StartWith) > 0 || props.StartIn != "" {
		return &Error{
			Code:    ErrCodeSchemaViolation,
			Message: "start properties belong at top level",
			Path:    d.Path,
		}
	}
	if props.Progressive && d.Kind == ast.KindItem {
		return &Error{
			Code:    ErrCodeSchemaViolation,
			Message: "progressive applies to item groups",
			Path:    d.Path,
		}
	}
	if props.Consumable && d.Kind == ast.KindItems {
		return &Error{
			Code:    ErrCodeSchemaViolation,
			Message: "consumable applies to single items",
			Path:    d.Path,
		}
	}

	var group *Item
	if d.Parent != ast.Root {
		group = b.g.items[d.Parent]
	}

	it := &Item{
		Path:       d.Path,
		Kind:       d.Kind,
		Tier:       -1,
		Consumable: props.Consumable,
		Vals:       b.valScopeItem(group, props.Vals),
		Tags:       props.Tags,
		Aliases:    props.Aliases,
	}
	if d.Kind == ast.KindItems {
		it.Progressive = props.Progressive
		it.Members = clonePaths(d.Children)
	}
	if group != nil {
		it.Group = group.Path
		if group.Progressive {
			it.Tier = memberIndex(group.Members, d.Path)
		}
	}

	sc := scope{vals: it.Vals}
	for _, v := range props.Vals {
		if err := b.checkExpr(v.Expr, d.Path, sc); err != nil {
			return err
		}
	}

	if props.Max != nil {
		max, err := b.staticQuantity(props.Max, d.Path, it.Vals, "max cap")
		if err != nil {
			return err
		}
		it.Max = max
	}

	it.Provides = props.Provides
	it.Unlocks = props.Unlocks
	it.Grants = compileGrants(props.Grants)
	if err := b.checkEffects(it.Provides, d.Path); err != nil {
		return err
	}

	b.g.items[d.Path] = it
	b.g.itemPick = append(b.g.itemPick, d.Path)
	return nil
}

func (b *builder) compileLinks() error {
	for _, d := range b.links {
		props := d.Props
		if len(props.Visible) > 0 || len(props.Unlocks) > 0 || len(props.Grants) > 0 ||
			len(props.Provides) > 0 || len(props.Avail) > 0 ||
			len(props.Tags) > 0 || len(props.Aliases) > 0 ||
			props.Progressive || props.Consumable || props.Max != nil ||
			len(props.StartWith) > 0 || props.StartIn != "" {
			return &Error{
				Code:    ErrCodeSchemaViolation,
				Message: "links carry requirements and vals only",
				Path:    d.Path,
			}
		}
		if len(d.Endpoints) == 0 {
			return &Error{
				Code:    ErrCodeSchemaViolation,
				Message: "link has no endpoints",
				Path:    d.Path,
			}
		}

		anchor := b.g.nodes[d.Parent]
		vals := b.valScope(anchor, props.Vals)
		req := conjoin(anchor.Requirement, props.Requires)

		sc := scope{vals: vals}
		if err := b.checkRequirementRoots(props.Requires, d.Path); err != nil {
			return err
		}
		for _, e := range props.Requires {
			if err := b.checkExpr(e, d.Path, sc); err != nil {
				return err
			}
		}
		for _, v := range props.Vals {
			if err := b.checkExpr(v.Expr, d.Path, sc); err != nil {
				return err
			}
		}

		for _, ep := range d.Endpoints {
			if _, ok := b.g.nodes[ep]; !ok {
				if b.known[ep] {
					return &Error{
						Code:    ErrCodeSchemaViolation,
						Message: "link endpoint must be a region or location",
						Path:    ep,
						Site:    d.Path,
					}
				}
				return &Error{
					Code:    ErrCodeUnresolvedPath,
					Message: "link endpoint does not resolve",
					Path:    ep,
					Site:    d.Path,
				}
			}
			if d.Dir == ast.LinkTo || d.Dir == ast.LinkWith {
				b.g.edges = append(b.g.edges, Edge{
					Link: d.Path, From: anchor.Path, To: ep, Requirement: req, Vals: vals,
				})
			}
			if d.Dir == ast.LinkFrom || d.Dir == ast.LinkWith {
				b.g.edges = append(b.g.edges, Edge{
					Link: d.Path, From: ep, To: anchor.Path, Requirement: req, Vals: vals,
				})
			}
		}
	}
	return nil
}

// resolvePools folds each item's per-site supply into its pool. Sites
// supplying a non-consumable stack independently, so their counts sum. A
// consumable's sites all draw on one shared stock, so its pool is the
// largest single-site quantity. One unlimited site makes the whole pool
// unlimited either way.
func (b *builder) resolvePools() {
	for _, p := range b.g.order {
		for _, av := range b.g.nodes[p].Avail {
			it := b.g.items[av.Item]
			if av.Unlimited {
				it.PoolUnlimited = true
				continue
			}
			if it.Consumable {
				it.Pool = max(it.Pool, av.Count)
				continue
			}
			it.Pool += av.Count
		}
	}
}

func (b *builder) compileStart(decls []*merge.Node) error {
	st := b.tree.Start()

	region := st.Region
	if region != "" {
		n, ok := b.g.nodes[region]
		if !ok {
			return &Error{
				Code:    ErrCodeUnresolvedPath,
				Message: "start region does not resolve",
				Path:    region,
			}
		}
		if n.Kind != ast.KindRegion {
			return &Error{
				Code:    ErrCodeSchemaViolation,
				Message: "start in names a location, expected a region",
				Path:    region,
			}
		}
	} else {
		for _, d := range decls {
			if d.Kind == ast.KindRegion {
				region = d.Path
				break
			}
		}
	}
	b.g.start.Region = region

	for _, si := range st.Items {
		if err := b.checkStartTarget(si.Target); err != nil {
			return err
		}
		count := int64(1)
		if si.Count != nil {
			n, err := b.staticQuantity(si.Count, si.Target, nil, "start with quantity")
			if err != nil {
				return err
			}
			count = n
		}
		b.g.start.Items = append(b.g.start.Items, StartCount{Item: si.Target, Count: count})
	}
	return nil
}

// checkStartTarget admits concrete items, unlock flags, and progressive
// groups (whose shared counter the count advances). A plain group is
// ambiguous about which member to grant and is rejected.
func (b *builder) checkStartTarget(p ast.Path) error {
	if it, ok := b.g.items[p]; ok {
		if it.Kind == ast.KindItems && !it.Progressive {
			return &Error{
				Code:    ErrCodeSchemaViolation,
				Message: "start with cannot name a plain item group",
				Path:    p,
			}
		}
		return nil
	}
	if b.g.flags[p] {
		return nil
	}
	return &Error{
		Code:    ErrCodeUnresolvedPath,
		Message: "start with target does not resolve to an item",
		Path:    p,
	}
}

// resolveAvail folds a site's merged supply entries into a schedule. A
// negated entry drops every earlier entry for the same target; quantities
// are configuration-static and must be positive whole numbers.
func (b *builder) resolveAvail(entries []ast.AvailEntry, site ast.Path, vals map[ast.Path]ast.Expr) ([]Avail, error) {
	var out []Avail
	for _, e := range entries {
		if e.Negate {
			kept := out[:0]
			for _, av := range out {
				if av.Item != e.Target {
					kept = append(kept, av)
				}
			}
			out = kept
			continue
		}

		it, ok := b.g.items[e.Target]
		if !ok {
			return nil, &Error{
				Code:    ErrCodeUnresolvedPath,
				Message: "avail target does not resolve to an item",
				Path:    e.Target,
				Site:    site,
			}
		}
		if it.Kind == ast.KindItems {
			return nil, &Error{
				Code:    ErrCodeSchemaViolation,
				Message: "avail supplies a concrete item, not a group",
				Path:    e.Target,
				Site:    site,
			}
		}

		if e.Unlimited {
			out = append(out, Avail{Item: e.Target, Unlimited: true})
			continue
		}
		count := int64(1)
		if e.Count != nil {
			n, err := b.staticQuantity(e.Count, site, vals, "avail quantity")
			if err != nil {
				return nil, err
			}
			count = n
		}
		out = append(out, Avail{Item: e.Target, Count: count})
	}
	return out, nil
}

// staticQuantity evaluates a configuration-static expression to a positive
// whole number.
func (b *builder) staticQuantity(e ast.Expr, site ast.Path, vals map[ast.Path]ast.Expr, what string) (int64, error) {
	env := &eval.Env{
		Config:   b.cfg.Values(),
		Variants: b.g.variants,
		Vals:     vals,
		Fns:      b.g.fns,
		Choices:  b.g.choices,
	}
	v, err := eval.Evaluate(e, env)
	if err != nil {
		var ee *eval.Error
		if eval.IsUnresolvedPath(err) && errors.As(err, &ee) {
			if b.known[ee.Path] {
				return 0, &Error{
					Code:    ErrCodeSchemaViolation,
					Message: what + " must be configuration-static",
					Path:    ee.Path,
					Site:    site,
				}
			}
			return 0, &Error{
				Code:    ErrCodeUnresolvedPath,
				Message: what + " references an unresolved path",
				Path:    ee.Path,
				Site:    site,
			}
		}
		return 0, err
	}
	n, ok := v.(ast.NumValue)
	if !ok {
		return 0, &Error{
			Code:    ErrCodeSchemaViolation,
			Message: what + " must be a number, got " + v.String(),
			Site:    site,
		}
	}
	if !n.IsInt() || !n.Rat.Num().IsInt64() {
		return 0, &Error{
			Code:    ErrCodeSchemaViolation,
			Message: what + " must be a whole number, got " + n.String(),
			Site:    site,
		}
	}
	k := n.Rat.Num().Int64()
	if k < 1 {
		return 0, &Error{
			Code:    ErrCodeSchemaViolation,
			Message: fmt.Sprintf("%s must be positive, got %d", what, k),
			Site:    site,
		}
	}
	return k, nil
}

// checkEffects verifies provides targets; unlock and grants targets
// introduce their flags and need no check.
func (b *builder) checkEffects(provides []ast.Path, site ast.Path) error {
	for _, p := range provides {
		if _, ok := b.g.items[p]; ok {
			continue
		}
		if b.g.flags[p] {
			continue
		}
		return &Error{
			Code:    ErrCodeUnresolvedPath,
			Message: "provides target does not resolve to an item or flag",
			Path:    p,
			Site:    site,
		}
	}
	return nil
}

func (b *builder) checkFn(d *merge.Node) error {
	fn := d.Decl.(*ast.FnDecl)
	params := make(map[string]bool, len(fn.Params))
	for _, p := range fn.Params {
		params[p.Name.Ident] = true
	}
	return b.checkExpr(fn.Body, d.Path, scope{params: params})
}

func (b *builder) checkRandom(d *merge.Node) error {
	decl := d.Decl.(*ast.RandomDecl)
	for _, c := range decl.Choices {
		if err := b.checkExpr(c, d.Path, scope{}); err != nil {
			return err
		}
	}
	return nil
}

// valScope layers a declaration's own val bindings over its parent's,
// inner shadowing outer.
func (b *builder) valScope(parent *Node, own []merge.ValBinding) map[ast.Path]ast.Expr {
	var base map[ast.Path]ast.Expr
	if parent != nil {
		base = parent.Vals
	}
	return layerVals(base, own)
}

func (b *builder) valScopeItem(group *Item, own []merge.ValBinding) map[ast.Path]ast.Expr {
	var base map[ast.Path]ast.Expr
	if group != nil {
		base = group.Vals
	}
	return layerVals(base, own)
}

func layerVals(base map[ast.Path]ast.Expr, own []merge.ValBinding) map[ast.Path]ast.Expr {
	if len(base) == 0 && len(own) == 0 {
		return nil
	}
	out := make(map[ast.Path]ast.Expr, len(base)+len(own))
	for k, v := range base {
		out[k] = v
	}
	for _, vb := range own {
		out[ast.Path(vb.Name)] = vb.Expr
	}
	return out
}

func compileGrants(entries []ast.GrantEntry) []Grant {
	if len(entries) == 0 {
		return nil
	}
	out := make([]Grant, len(entries))
	for i, e := range entries {
		out[i] = Grant{Clear: e.Negate, Flag: e.Target}
	}
	return out
}

// conjoin builds the effective requirement: the inherited expression, when
// any, conjoined with the declaration's own clauses. The empty conjunction
// is the true literal.
func conjoin(inherited ast.Expr, own []ast.Expr) ast.Expr {
	terms := make([]ast.Expr, 0, len(own)+1)
	if inherited != nil && inherited != ast.True {
		terms = append(terms, inherited)
	}
	terms = append(terms, own...)
	switch len(terms) {
	case 0:
		return ast.True
	case 1:
		return terms[0]
	default:
		return ast.And(terms...)
	}
}

func clonePaths(paths []ast.Path) []ast.Path {
	if len(paths) == 0 {
		return nil
	}
	out := make([]ast.Path, len(paths))
	copy(out, paths)
	return out
}

func memberIndex(members []ast.Path, p ast.Path) int {
	for i, m := range members {
		if m == p {
			return i
		}
	}
	return -1
}
