package eval

import (
	"math/big"

	"github.com/radolang/rado/ast"
)

func evalBuiltin(x *ast.BuiltinExpr, env *Env) (ast.Value, error) {
	switch x.Op {
	case ast.BuiltinCount:
		return evalCount(x, env)
	case ast.BuiltinMin, ast.BuiltinMax:
		return evalMinMax(x, env)
	case ast.BuiltinSum:
		return evalSum(x, env)
	default:
		return nil, newSchema("unknown builtin %s", x.Op)
	}
}

// evalCount counts how many of the listed paths are held at least once.
// Each distinct path contributes at most one, however many copies are held
// and however many times it is listed.
func evalCount(x *ast.BuiltinExpr, env *Env) (ast.Value, error) {
	n := int64(0)
	seen := make(map[ast.Path]bool, len(x.Args))
	for _, arg := range x.Args {
		name, ok := arg.(*ast.NameExpr)
		if !ok {
			return nil, newSchema("count expects item names, got %T", arg)
		}
		p := name.Path
		if seen[p] {
			continue
		}
		seen[p] = true

		if env.Items == nil || !env.Items.Covers(p) {
			// A path known to another space is a type error; an unknown
			// path is an unresolved reference.
			if _, err := env.lookup(p); err == nil {
				return nil, &Error{
					Code:    ErrCodeSchemaViolation,
					Message: "count expects an item or flag path",
					Path:    p,
				}
			}
			return nil, newUnresolved(p)
		}
		if env.Items.Held(p) >= 1 {
			n++
		}
	}
	return ast.NumFromInt(n), nil
}

func evalMinMax(x *ast.BuiltinExpr, env *Env) (ast.Value, error) {
	if len(x.Args) == 0 {
		return nil, newSchema("%s expects at least one argument", x.Op)
	}
	var best *big.Rat
	for _, arg := range x.Args {
		n, err := evalNum(arg, env)
		if err != nil {
			return nil, err
		}
		if best == nil {
			best = n
			continue
		}
		cmp := n.Cmp(best)
		if (x.Op == ast.BuiltinMin && cmp < 0) || (x.Op == ast.BuiltinMax && cmp > 0) {
			best = n
		}
	}
	return ast.Num(best), nil
}

// evalSum folds addition over its arguments; the empty sum is zero.
func evalSum(x *ast.BuiltinExpr, env *Env) (ast.Value, error) {
	acc := new(big.Rat)
	for _, arg := range x.Args {
		n, err := evalNum(arg, env)
		if err != nil {
			return nil, err
		}
		acc.Add(acc, n)
	}
	return ast.Num(acc), nil
}

func evalNum(e ast.Expr, env *Env) (*big.Rat, error) {
	v, err := Evaluate(e, env)
	if err != nil {
		return nil, err
	}
	n, ok := v.(ast.NumValue)
	if !ok {
		return nil, newSchema("expected number, got %s", v)
	}
	return n.Rat, nil
}
