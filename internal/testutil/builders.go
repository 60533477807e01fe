// Package testutil provides compact builders for statement trees, so
// package tests can lay out worlds without going through the loader.
//
// Tests typically alias the builders to short local names:
//
//	var (
//		bind   = testutil.Bind
//		region = testutil.Region
//	)
package testutil

import "github.com/radolang/rado/ast"

// Src wraps statements as a named source.
func Src(name string, stmts ...ast.Stmt) ast.Source {
	return ast.Source{Name: name, Stmts: stmts}
}

// Bind, Modify, and Override wrap a declaration in a statement with the
// corresponding merge operation.
func Bind(d ast.Decl) ast.Stmt     { return &ast.DeclStmt{Op: ast.OpBind, Decl: d} }
func Modify(d ast.Decl) ast.Stmt   { return &ast.DeclStmt{Op: ast.OpModify, Decl: d} }
func Override(d ast.Decl) ast.Stmt { return &ast.DeclStmt{Op: ast.OpOverride, Decl: d} }

// Delete removes the named sibling declaration.
func Delete(name string) ast.Stmt { return &ast.DeleteStmt{Target: ast.N(name)} }

// Prop wraps a property in a statement.
func Prop(p ast.Prop) ast.Stmt { return &ast.PropStmt{Prop: p} }

func Region(name string, body ...ast.Stmt) *ast.RegionDecl {
	return &ast.RegionDecl{Name: ast.N(name), Body: body}
}

func Location(name string, body ...ast.Stmt) *ast.LocationDecl {
	return &ast.LocationDecl{Name: ast.N(name), Body: body}
}

func Item(name string, body ...ast.Stmt) *ast.ItemDecl {
	return &ast.ItemDecl{Name: ast.N(name), Body: body}
}

func Items(name string, body ...ast.Stmt) *ast.ItemsDecl {
	return &ast.ItemsDecl{Name: ast.N(name), Body: body}
}

func Requires(e ast.Expr) ast.Stmt { return Prop(ast.RequiresProp{Cond: e}) }
func Visible(e ast.Expr) ast.Stmt  { return Prop(ast.VisibleProp{Cond: e}) }

// Count builds the count builtin over the given arguments.
func Count(args ...ast.Expr) *ast.BuiltinExpr {
	return &ast.BuiltinExpr{Op: ast.BuiltinCount, Args: args}
}

// Avail supplies n of target. AvailExpr takes the count as an expression,
// AvailUnlimited lifts the cap.
func Avail(target ast.Path, n int64) ast.Stmt {
	return AvailExpr(target, ast.Int(n))
}

func AvailExpr(target ast.Path, count ast.Expr) ast.Stmt {
	return Prop(ast.AvailProp{Entries: ast.NewVec(ast.AvailEntry{Target: target, Count: count})})
}

func AvailUnlimited(target ast.Path) ast.Stmt {
	return Prop(ast.AvailProp{Entries: ast.NewVec(ast.AvailEntry{Target: target, Unlimited: true})})
}

// ConfigNum and ConfigBool declare typed configuration options.
func ConfigNum(name string, def ast.Expr) *ast.ConfigDecl {
	return &ast.ConfigDecl{Name: ast.N(name), Type: ast.TypeRef{Kind: ast.TypeNum}, Default: def}
}

func ConfigBool(name string, def ast.Expr) *ast.ConfigDecl {
	return &ast.ConfigDecl{Name: ast.N(name), Type: ast.TypeRef{Kind: ast.TypeBool}, Default: def}
}

func Configset(name string, entries ...ast.ConfigsetEntry) *ast.ConfigsetDecl {
	return &ast.ConfigsetDecl{Name: ast.N(name), Entries: entries}
}

func Assign(target ast.Path, v ast.Expr) ast.ConfigsetEntry {
	return ast.ConfigsetAssign{Target: target, Value: v}
}

func Include(set ast.Path) ast.ConfigsetEntry {
	return ast.ConfigsetInclude{Set: set}
}
