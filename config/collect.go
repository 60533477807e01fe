package config

import (
	"github.com/radolang/rado/ast"
)

// Decls is the collected configuration family of a source set: every
// config with its type and default, every configset, and every enum (for
// variant identity and type checking).
type Decls struct {
	order    []ast.Path
	configs  map[ast.Path]*configInfo
	sets     map[ast.Path]*ast.ConfigsetDecl
	enums    map[ast.Path][]ast.Path
	variants map[ast.Path]bool
}

type configInfo struct {
	typ ast.TypeRef
	def ast.Expr
}

// Collect scans sources for the configuration family without merging them.
// The scan enters declaration bodies at their nesting path and walks both
// branches of conditionals; inside a conditional the first binding of a
// path wins and later conflicting bindings are ignored, since the branch
// choice is not decidable before resolution. An unconditional rebinding is
// a duplicate declaration.
func Collect(sources []ast.Source) (*Decls, error) {
	d := &Decls{
		configs:  make(map[ast.Path]*configInfo),
		sets:     make(map[ast.Path]*ast.ConfigsetDecl),
		enums:    make(map[ast.Path][]ast.Path),
		variants: make(map[ast.Path]bool),
	}
	for _, src := range sources {
		if err := d.scanStmts(src.Stmts, ast.Root, false); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Decls) scanStmts(stmts []ast.Stmt, ctx ast.Path, conditional bool) error {
	for _, s := range stmts {
		switch st := s.(type) {
		case *ast.DeclStmt:
			if err := d.scanDecl(st, ctx, conditional); err != nil {
				return err
			}
		case *ast.DeleteStmt:
			p := ast.JoinPath(ctx, st.Target.Ident)
			d.remove(p)
		case *ast.CondStmt:
			if err := d.scanStmts(st.Then, ctx, true); err != nil {
				return err
			}
			if err := d.scanStmts(st.Else, ctx, true); err != nil {
				return err
			}
		case *ast.PropStmt:
			// properties carry no configuration
		}
	}
	return nil
}

func (d *Decls) scanDecl(st *ast.DeclStmt, ctx ast.Path, conditional bool) error {
	replace := st.Op == ast.OpOverride
	switch decl := st.Decl.(type) {
	case *ast.ConfigDecl:
		p := ast.JoinPath(ctx, decl.Name.Ident)
		return d.record(p, &configInfo{typ: decl.Type, def: decl.Default}, replace, conditional)

	case *ast.ConfigEnumDecl:
		p := ast.JoinPath(ctx, decl.Name.Ident)
		info := &configInfo{
			typ: ast.TypeRef{Kind: ast.TypeEnum, Enum: decl.Enum},
			def: ast.Ref(decl.Default),
		}
		return d.record(p, info, replace, conditional)

	case *ast.ConfigsDecl:
		// A batch binds each entry at the enclosing scope with the batch type.
		for i := range decl.Entries {
			entry := &decl.Entries[i]
			p := ast.JoinPath(ctx, entry.Name.Ident)
			if err := d.record(p, &configInfo{typ: decl.Type, def: entry.Default}, replace, conditional); err != nil {
				return err
			}
		}
		return nil

	case *ast.ConfigsetDecl:
		p := ast.JoinPath(ctx, decl.Name.Ident)
		if _, exists := d.sets[p]; exists && !replace && !conditional {
			return &Error{
				Code:    ErrCodeDuplicateDeclaration,
				Message: "configset already declared",
				Path:    p,
			}
		}
		if _, exists := d.sets[p]; !exists || replace {
			d.sets[p] = decl
		}
		return nil

	case *ast.EnumDecl:
		p := ast.JoinPath(ctx, decl.Name.Ident)
		if _, exists := d.enums[p]; !exists || replace {
			vars := make([]ast.Path, len(decl.Variants))
			for i, v := range decl.Variants {
				vp := ast.JoinPath(p, v.Ident)
				vars[i] = vp
				d.variants[vp] = true
			}
			d.enums[p] = vars
		}
		return nil

	default:
		// Other declarations only matter as nesting scopes here.
		return d.scanBody(st.Decl, ctx, conditional)
	}
}

func (d *Decls) scanBody(decl ast.Decl, ctx ast.Path, conditional bool) error {
	var body []ast.Stmt
	switch n := decl.(type) {
	case *ast.RegionDecl:
		body = n.Body
	case *ast.LocationDecl:
		body = n.Body
	case *ast.ItemDecl:
		body = n.Body
	case *ast.ItemsDecl:
		body = n.Body
	case *ast.LinkDecl:
		body = n.Body
	default:
		return nil
	}
	return d.scanStmts(body, ast.JoinPath(ctx, decl.DeclName().Ident), conditional)
}

func (d *Decls) record(p ast.Path, info *configInfo, replace, conditional bool) error {
	if _, exists := d.configs[p]; exists {
		switch {
		case replace:
			d.configs[p] = info
		case conditional:
			// first conditional binding wins
		default:
			return &Error{
				Code:    ErrCodeDuplicateDeclaration,
				Message: "config already declared",
				Path:    p,
			}
		}
		return nil
	}
	d.order = append(d.order, p)
	d.configs[p] = info
	return nil
}

func (d *Decls) remove(p ast.Path) {
	delete(d.configs, p)
	delete(d.sets, p)
	for i, q := range d.order {
		if q == p {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// Variants returns the set of enum variant paths seen by the scan.
// The returned map is shared; callers must not mutate it.
func (d *Decls) Variants() map[ast.Path]bool {
	return d.variants
}
