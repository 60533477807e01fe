package ast

// WalkExpr visits e and every subexpression in evaluation order. The visit
// function returns false to stop descending into the current node's
// children; the walk itself always continues with siblings.
func WalkExpr(e Expr, visit func(Expr) bool) {
	if e == nil {
		return
	}
	if !visit(e) {
		return
	}
	switch x := e.(type) {
	case *NumLit, *BoolLit, *NameExpr:
		// leaves
	case *CallExpr:
		for _, a := range x.Args {
			WalkExpr(a, visit)
		}
	case *BuiltinExpr:
		for _, a := range x.Args {
			WalkExpr(a, visit)
		}
	case *NotExpr:
		WalkExpr(x.X, visit)
	case *BinExpr:
		WalkExpr(x.L, visit)
		WalkExpr(x.R, visit)
	case *AndExpr:
		for _, t := range x.Terms {
			WalkExpr(t, visit)
		}
	case *OrExpr:
		for _, t := range x.Terms {
			WalkExpr(t, visit)
		}
	case *IfExpr:
		WalkExpr(x.Cond, visit)
		WalkExpr(x.Then, visit)
		WalkExpr(x.Else, visit)
	case *MatchExpr:
		WalkExpr(x.Subject, visit)
		for _, arm := range x.Arms {
			WalkExpr(arm.Body, visit)
		}
	}
}

// ExprPaths collects every path the expression references: names, call
// targets, and match patterns, in first-appearance order without
// duplicates.
func ExprPaths(e Expr) []Path {
	var out []Path
	seen := make(map[Path]bool)
	add := func(p Path) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	WalkExpr(e, func(sub Expr) bool {
		switch x := sub.(type) {
		case *NameExpr:
			add(x.Path)
		case *CallExpr:
			add(x.Fn)
		case *MatchExpr:
			for _, arm := range x.Arms {
				add(arm.Pattern)
			}
		}
		return true
	})
	return out
}

// WalkStmts visits each statement and, for conditionals, both branches.
// Declaration bodies are not entered; callers that need nesting recurse
// through the declaration themselves.
func WalkStmts(stmts []Stmt, visit func(Stmt) bool) {
	for _, s := range stmts {
		if !visit(s) {
			continue
		}
		if c, ok := s.(*CondStmt); ok {
			WalkStmts(c.Then, visit)
			WalkStmts(c.Else, visit)
		}
	}
}
