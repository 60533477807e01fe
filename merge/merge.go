package merge

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/radolang/rado/ast"
	"github.com/radolang/rado/config"
	"github.com/radolang/rado/eval"
)

// Option configures a fold.
type Option func(*folder)

// WithLogger installs a logger for debug traces of the fold.
func WithLogger(logger *slog.Logger) Option {
	return func(f *folder) {
		f.log = logger
	}
}

// Resolve folds sources in load order into a tree, evaluating merge-time
// conditionals against the configuration snapshot. Any error aborts the
// whole fold; no partial tree escapes.
func Resolve(sources []ast.Source, cfg *config.Snapshot, opts ...Option) (*Tree, error) {
	if cfg == nil {
		cfg = config.NewSnapshot(nil, nil)
	}
	f := &folder{
		cfg:   cfg,
		log:   slog.Default(),
		nodes: make(map[ast.Path]*node),
	}
	for _, opt := range opts {
		opt(f)
	}

	for _, src := range sources {
		f.source = src.Name
		if err := f.fold(src.Stmts, ast.Root); err != nil {
			return nil, err
		}
	}

	return &Tree{
		sources: slices.Clone(sources),
		cfg:     cfg,
		nodes:   f.nodes,
		order:   f.order,
		roots:   f.roots,
		start:   f.start,
	}, nil
}

// Extend appends one source to an existing tree by replaying every source
// into a fresh fold. The previous tree is never touched; on error it
// remains the caller's valid current tree.
func Extend(prev *Tree, src ast.Source, opts ...Option) (*Tree, error) {
	sources := make([]ast.Source, 0, len(prev.sources)+1)
	sources = append(sources, prev.sources...)
	sources = append(sources, src)
	return Resolve(sources, prev.cfg, opts...)
}

type folder struct {
	cfg    *config.Snapshot
	log    *slog.Logger
	source string
	nodes  map[ast.Path]*node
	order  []ast.Path
	roots  []ast.Path
	start  StartState
	next   int
}

// fold merges one statement list in the context of the declaration at ctx
// (Root for top level).
func (f *folder) fold(stmts []ast.Stmt, ctx ast.Path) error {
	for _, s := range stmts {
		var err error
		switch st := s.(type) {
		case *ast.DeclStmt:
			err = f.foldDecl(st, ctx)
		case *ast.DeleteStmt:
			err = f.deleteDecl(ast.JoinPath(ctx, st.Target.Ident))
		case *ast.PropStmt:
			err = f.applyProp(st.Prop, ctx)
		case *ast.CondStmt:
			err = f.foldCond(st, ctx)
		default:
			err = f.errAt(ErrCodeSchemaViolation, ctx, fmt.Sprintf("unknown statement type %T", s))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (f *folder) foldDecl(st *ast.DeclStmt, ctx ast.Path) error {
	// A configs batch binds each entry directly at the enclosing scope.
	if batch, ok := st.Decl.(*ast.ConfigsDecl); ok {
		if st.Op != ast.OpBind {
			return f.errAt(ErrCodeSchemaViolation, ctx, "configs batches support plain binding only")
		}
		for i := range batch.Entries {
			entry := &batch.Entries[i]
			bound := &ast.ConfigDecl{Name: entry.Name, Type: batch.Type, Default: entry.Default}
			if err := f.bind(&ast.DeclStmt{Op: ast.OpBind, Decl: bound}, ctx); err != nil {
				return err
			}
		}
		return nil
	}

	switch st.Op {
	case ast.OpBind:
		return f.bind(st, ctx)
	case ast.OpModify:
		return f.modify(st, ctx)
	case ast.OpOverride:
		return f.override(st, ctx)
	default:
		return f.errAt(ErrCodeSchemaViolation, ctx, "unknown declaration operation")
	}
}

func (f *folder) bind(st *ast.DeclStmt, ctx ast.Path) error {
	decl := st.Decl
	p := ast.JoinPath(ctx, decl.DeclName().Ident)
	if existing, ok := f.nodes[p]; ok {
		msg := "path is already bound"
		if existing.tombstone {
			msg = "path was deleted and stays occupied"
		}
		return f.errAt(ErrCodeDuplicateDeclaration, p, msg)
	}

	n := &node{
		path:   p,
		kind:   ast.KindOf(decl),
		decl:   decl,
		order:  f.next,
		parent: ctx,
	}
	f.next++
	f.nodes[p] = n
	f.order = append(f.order, p)
	if ctx == ast.Root {
		f.roots = append(f.roots, p)
	} else {
		f.nodes[ctx].children = append(f.nodes[ctx].children, p)
	}

	if link, ok := decl.(*ast.LinkDecl); ok {
		n.dir = link.Dir
		if err := f.decorate(applyVec(&n.endpoints, link.Endpoints, eqPath), p, "endpoints"); err != nil {
			return err
		}
	}

	return f.foldBody(decl, p)
}

func (f *folder) modify(st *ast.DeclStmt, ctx ast.Path) error {
	decl := st.Decl
	p := ast.JoinPath(ctx, decl.DeclName().Ident)
	n, err := f.target(p, "modify")
	if err != nil {
		return err
	}
	if n.kind != ast.KindOf(decl) {
		return f.errAt(ErrCodeSchemaViolation, p,
			fmt.Sprintf("modify declares %s but target is %s", ast.KindOf(decl), n.kind))
	}

	// Direction is fixed at bind; a modify that needs a new direction is
	// an override.
	if link, ok := decl.(*ast.LinkDecl); ok {
		if !link.Endpoints.IsZero() {
			if err := f.decorate(applyVec(&n.endpoints, link.Endpoints, eqPath), p, "endpoints"); err != nil {
				return err
			}
		}
	}

	return f.foldBody(decl, p)
}

func (f *folder) override(st *ast.DeclStmt, ctx ast.Path) error {
	decl := st.Decl
	p := ast.JoinPath(ctx, decl.DeclName().Ident)
	n, err := f.target(p, "override")
	if err != nil {
		return err
	}
	if n.kind != ast.KindOf(decl) {
		return f.errAt(ErrCodeSchemaViolation, p,
			fmt.Sprintf("override declares %s but target is %s", ast.KindOf(decl), n.kind))
	}

	// The body is replaced wholesale: prior children unbind (their paths
	// free up for the new body), properties reset, identity and binding
	// order stay.
	for _, child := range n.children {
		f.free(child)
	}
	n.children = nil
	n.props = propState{}
	n.decl = decl
	n.endpoints = listState[ast.Path]{}

	if link, ok := decl.(*ast.LinkDecl); ok {
		n.dir = link.Dir
		if err := f.decorate(applyVec(&n.endpoints, link.Endpoints, eqPath), p, "endpoints"); err != nil {
			return err
		}
	}

	f.log.Debug("override", slog.String("path", string(p)), slog.String("source", f.source))
	return f.foldBody(decl, p)
}

func (f *folder) deleteDecl(p ast.Path) error {
	n, err := f.target(p, "delete")
	if err != nil {
		return err
	}
	f.tombstone(n)
	if parent, ok := f.nodes[n.parent]; ok {
		parent.children = remove(parent.children, p)
	} else if n.parent == ast.Root {
		f.roots = remove(f.roots, p)
	}
	f.log.Debug("delete", slog.String("path", string(p)), slog.String("source", f.source))
	return nil
}

// tombstone marks a subtree deleted. Nodes stay in the arena so the paths
// remain occupied.
func (f *folder) tombstone(n *node) {
	n.tombstone = true
	for _, child := range n.children {
		if c, ok := f.nodes[child]; ok {
			f.tombstone(c)
		}
	}
}

// free removes a subtree entirely; the paths become bindable again. Used
// when an override discards the previous body.
func (f *folder) free(p ast.Path) {
	n, ok := f.nodes[p]
	if !ok {
		return
	}
	for _, child := range n.children {
		f.free(child)
	}
	delete(f.nodes, p)
	f.order = remove(f.order, p)
}

func (f *folder) foldBody(decl ast.Decl, p ast.Path) error {
	switch d := decl.(type) {
	case *ast.RegionDecl:
		return f.fold(d.Body, p)
	case *ast.LocationDecl:
		return f.fold(d.Body, p)
	case *ast.ItemDecl:
		return f.fold(d.Body, p)
	case *ast.ItemsDecl:
		return f.fold(d.Body, p)
	case *ast.LinkDecl:
		return f.fold(d.Body, p)
	default:
		// fn, enum, config family, random: no statement body
		return nil
	}
}

func (f *folder) foldCond(st *ast.CondStmt, ctx ast.Path) error {
	env := &eval.Env{
		Config:   f.cfg.Values(),
		Variants: f.cfg.Variants(),
	}
	take, err := eval.EvalBool(st.Cond, env)
	if err != nil {
		// The static environment resolves configuration and enum variants
		// only, so an unresolved path here means the condition reaches for
		// non-static state (items, functions, or nothing at all).
		if eval.IsUnresolvedPath(err) {
			var ee *eval.Error
			path := ctx
			if errors.As(err, &ee) {
				path = ee.Path
			}
			return f.errAt(ErrCodeNonStaticCondition, path,
				"merge-time conditional references a non-configuration value")
		}
		return fmt.Errorf("conditional in %s: %w", f.source, err)
	}
	if take {
		return f.fold(st.Then, ctx)
	}
	return f.fold(st.Else, ctx)
}

func (f *folder) applyProp(prop ast.Prop, ctx ast.Path) error {
	// Start properties are legal at a source's top level, contributing to
	// the tree-level start state.
	if ctx == ast.Root {
		switch pr := prop.(type) {
		case ast.StartInProp:
			f.start.Region = pr.Region
			return nil
		case ast.StartWithProp:
			st := listState[ast.StartItem]{set: true, items: f.start.Items}
			if err := f.decorate(applyVec(&st, pr.Items, eqStartItem), ast.Root, "start with"); err != nil {
				return err
			}
			f.start.Items = st.items
			return nil
		default:
			return f.errAt(ErrCodeSchemaViolation, ast.Root, "property outside a declaration body")
		}
	}

	n := f.nodes[ctx]
	s := &n.props
	switch pr := prop.(type) {
	case ast.RequiresProp:
		s.requires = append(s.requires, pr.Cond)
	case ast.VisibleProp:
		s.visible = append(s.visible, pr.Cond)
	case ast.UnlockProp:
		return f.decorate(applyVec(&s.unlocks, pr.Flags, eqPath), ctx, "unlock")
	case ast.GrantsProp:
		return f.decorate(applyVec(&s.grants, pr.Entries, eqGrant), ctx, "grants")
	case ast.ProvidesProp:
		return f.decorate(applyVec(&s.provides, pr.Items, eqPath), ctx, "provides")
	case ast.TagProp:
		return f.decorate(applyVec(&s.tags, pr.Tags, eqPath), ctx, "tag")
	case ast.AliasProp:
		return f.decorate(applyVec(&s.aliases, pr.Aliases, eqName), ctx, "alias")
	case ast.ProgressiveProp:
		s.progressive = true
	case ast.ValProp:
		s.setVal(pr.Name.Ident, pr.Value)
	case ast.MaxProp:
		s.max = pr.Count
	case ast.ConsumableProp:
		s.consumable = true
	case ast.AvailProp:
		return f.decorate(applyVec(&s.avail, pr.Entries, eqAvail), ctx, "avail")
	case ast.StartWithProp:
		return f.decorate(applyVec(&s.startWith, pr.Items, eqStartItem), ctx, "start with")
	case ast.StartInProp:
		s.startIn = pr.Region
	default:
		return f.errAt(ErrCodeSchemaViolation, ctx, fmt.Sprintf("unknown property type %T", prop))
	}
	return nil
}

// target resolves the path a modify, override, or delete addresses.
func (f *folder) target(p ast.Path, op string) (*node, error) {
	n, ok := f.nodes[p]
	if !ok {
		return nil, f.errAt(ErrCodeUnknownReference, p, op+" targets an undeclared path")
	}
	if n.tombstone {
		return nil, f.errAt(ErrCodeUnknownReference, p, op+" targets a deleted path")
	}
	return n, nil
}

// decorate attaches path, property, and source context to a list error.
func (f *folder) decorate(err error, p ast.Path, prop string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return &Error{
			Code:    e.Code,
			Message: prop + ": " + e.Message,
			Path:    p,
			Source:  f.source,
		}
	}
	return err
}

func (f *folder) errAt(code ErrorCode, p ast.Path, msg string) error {
	return &Error{Code: code, Message: msg, Path: p, Source: f.source}
}

func remove(paths []ast.Path, p ast.Path) []ast.Path {
	for i, q := range paths {
		if q == p {
			return slices.Delete(paths, i, i+1)
		}
	}
	return paths
}
