package eval

import (
	"math/big"

	"github.com/radolang/rado/ast"
)

// Evaluate computes the value of an expression in an environment.
// Evaluation is pure and deterministic; errors are *Error values.
func Evaluate(e ast.Expr, env *Env) (ast.Value, error) {
	switch x := e.(type) {
	case *ast.NumLit:
		return ast.Num(x.Value), nil

	case *ast.BoolLit:
		return ast.BoolValue(x.Value), nil

	case *ast.NameExpr:
		return env.lookup(x.Path)

	case *ast.CallExpr:
		return evalCall(x, env)

	case *ast.BuiltinExpr:
		return evalBuiltin(x, env)

	case *ast.NotExpr:
		if env.Optimistic {
			// Phase-1 relaxation: the term is not evaluated at all.
			return ast.BoolValue(true), nil
		}
		v, err := Evaluate(x.X, env)
		if err != nil {
			return nil, err
		}
		b, ok := v.(ast.BoolValue)
		if !ok {
			return nil, newSchema("not expects bool, got %s", v)
		}
		return !b, nil

	case *ast.BinExpr:
		return evalBin(x, env)

	case *ast.AndExpr:
		for _, term := range x.Terms {
			b, err := evalBool(term, env)
			if err != nil {
				return nil, err
			}
			if !b {
				return ast.BoolValue(false), nil
			}
		}
		return ast.BoolValue(true), nil

	case *ast.OrExpr:
		for _, term := range x.Terms {
			b, err := evalBool(term, env)
			if err != nil {
				return nil, err
			}
			if b {
				return ast.BoolValue(true), nil
			}
		}
		return ast.BoolValue(false), nil

	case *ast.IfExpr:
		cond, err := evalBool(x.Cond, env)
		if err != nil {
			return nil, err
		}
		if cond {
			return Evaluate(x.Then, env)
		}
		return Evaluate(x.Else, env)

	case *ast.MatchExpr:
		return evalMatch(x, env)

	default:
		return nil, newSchema("unknown expression type %T", e)
	}
}

// EvalBool evaluates an expression and requires a boolean result.
func EvalBool(e ast.Expr, env *Env) (bool, error) {
	return evalBool(e, env)
}

func evalBool(e ast.Expr, env *Env) (bool, error) {
	v, err := Evaluate(e, env)
	if err != nil {
		return false, err
	}
	b, ok := v.(ast.BoolValue)
	if !ok {
		return false, newSchema("condition expects bool, got %s", v)
	}
	return bool(b), nil
}

// lookup resolves a bare name. Resolution order is fixed; the first space
// that knows the path wins.
func (env *Env) lookup(p ast.Path) (ast.Value, error) {
	if env.Params != nil {
		if v, ok := env.Params[string(p)]; ok {
			return v, nil
		}
	}
	if env.Vals != nil {
		if expr, ok := env.Vals[p]; ok {
			return env.evalVal(p, expr)
		}
	}
	if env.Config != nil {
		if v, ok := env.Config[p]; ok {
			return v, nil
		}
	}
	if env.Choices != nil {
		if expr, ok := env.Choices[p]; ok {
			return Evaluate(expr, env)
		}
	}
	if env.Variants != nil && env.Variants[p] {
		return ast.PathValue(p), nil
	}
	if env.Items != nil && env.Items.Covers(p) {
		return ast.BoolValue(env.Items.Held(p) >= 1), nil
	}
	if env.Idents != nil && env.Idents[p] {
		return ast.PathValue(p), nil
	}
	return nil, newUnresolved(p)
}

// evalVal evaluates a declaration-local val. Vals may reference other vals;
// a reference back into a val currently being evaluated cannot terminate
// and fails instead of looping.
func (env *Env) evalVal(p ast.Path, expr ast.Expr) (ast.Value, error) {
	if env.valStack[p] {
		return nil, &Error{
			Code:    ErrCodeSchemaViolation,
			Message: "val definition refers to itself",
			Path:    p,
		}
	}
	if env.valStack == nil {
		env.valStack = make(map[ast.Path]bool)
	}
	env.valStack[p] = true
	v, err := Evaluate(expr, env)
	delete(env.valStack, p)
	return v, err
}

func evalCall(x *ast.CallExpr, env *Env) (ast.Value, error) {
	if env.Fns == nil {
		return nil, newUnresolved(x.Fn)
	}
	fn, ok := env.Fns[x.Fn]
	if !ok {
		return nil, newUnresolved(x.Fn)
	}
	if len(x.Args) != len(fn.Params) {
		return nil, &Error{
			Code:    ErrCodeSchemaViolation,
			Message: "wrong argument count",
			Path:    x.Fn,
		}
	}

	params := make(map[string]ast.Value, len(fn.Params))
	for i, p := range fn.Params {
		v, err := Evaluate(x.Args[i], env)
		if err != nil {
			return nil, err
		}
		if err := checkParamType(p, v, x.Fn); err != nil {
			return nil, err
		}
		params[p.Name.Ident] = v
	}

	// Recursion is rejected statically at graph build, so the call depth
	// here is bounded by the function table size.
	return Evaluate(fn.Body, env.WithParams(params))
}

func checkParamType(p ast.Param, v ast.Value, fn ast.Path) error {
	ok := true
	switch p.Type.Kind {
	case ast.TypeNum:
		_, ok = v.(ast.NumValue)
	case ast.TypeBool:
		_, ok = v.(ast.BoolValue)
	case ast.TypeEnum:
		_, ok = v.(ast.PathValue)
	}
	if !ok {
		return &Error{
			Code:    ErrCodeSchemaViolation,
			Message: "argument " + p.Name.Ident + " expects " + p.Type.String() + ", got " + v.String(),
			Path:    fn,
		}
	}
	return nil
}

func evalBin(x *ast.BinExpr, env *Env) (ast.Value, error) {
	l, err := Evaluate(x.L, env)
	if err != nil {
		return nil, err
	}
	r, err := Evaluate(x.R, env)
	if err != nil {
		return nil, err
	}

	switch x.Op {
	case ast.OpEq:
		return ast.BoolValue(ast.Equal(l, r)), nil
	case ast.OpNe:
		return ast.BoolValue(!ast.Equal(l, r)), nil
	}

	ln, ok := l.(ast.NumValue)
	if !ok {
		return nil, newSchema("%s expects numbers, got %s", x.Op, l)
	}
	rn, ok := r.(ast.NumValue)
	if !ok {
		return nil, newSchema("%s expects numbers, got %s", x.Op, r)
	}

	switch x.Op {
	case ast.OpAdd:
		return ast.Num(new(big.Rat).Add(ln.Rat, rn.Rat)), nil
	case ast.OpSub:
		return ast.Num(new(big.Rat).Sub(ln.Rat, rn.Rat)), nil
	case ast.OpMul:
		return ast.Num(new(big.Rat).Mul(ln.Rat, rn.Rat)), nil
	case ast.OpDiv:
		if rn.Rat.Sign() == 0 {
			return nil, &Error{Code: ErrCodeDivisionByZero, Message: "division by zero"}
		}
		return ast.Num(new(big.Rat).Quo(ln.Rat, rn.Rat)), nil
	case ast.OpMod:
		return evalMod(ln.Rat, rn.Rat)
	case ast.OpLt:
		return ast.BoolValue(ln.Rat.Cmp(rn.Rat) < 0), nil
	case ast.OpLe:
		return ast.BoolValue(ln.Rat.Cmp(rn.Rat) <= 0), nil
	case ast.OpGt:
		return ast.BoolValue(ln.Rat.Cmp(rn.Rat) > 0), nil
	case ast.OpGe:
		return ast.BoolValue(ln.Rat.Cmp(rn.Rat) >= 0), nil
	default:
		return nil, newSchema("unknown operator %s", x.Op)
	}
}

// evalMod computes a % b as a - b*floor(a/b), the sign-correct definition
// for negative operands: -7 % 3 is 2, 7 % -3 is -2.
func evalMod(a, b *big.Rat) (ast.Value, error) {
	if b.Sign() == 0 {
		return nil, &Error{Code: ErrCodeDivisionByZero, Message: "modulo by zero"}
	}
	q := new(big.Rat).Quo(a, b)
	f := new(big.Rat).SetInt(ratFloor(q))
	m := new(big.Rat).Sub(a, new(big.Rat).Mul(b, f))
	return ast.Num(m), nil
}

// ratFloor returns the largest integer not greater than r. big.Rat keeps
// its denominator positive, and big.Int.Div rounds toward negative
// infinity for positive divisors, which is exactly floor.
func ratFloor(r *big.Rat) *big.Int {
	return new(big.Int).Div(r.Num(), r.Denom())
}

func evalMatch(x *ast.MatchExpr, env *Env) (ast.Value, error) {
	subject, err := Evaluate(x.Subject, env)
	if err != nil {
		return nil, err
	}
	id, ok := subject.(ast.PathValue)
	if !ok {
		return nil, newSchema("match expects a path identity subject, got %s", subject)
	}
	for _, arm := range x.Arms {
		if ast.Path(id) == arm.Pattern {
			return Evaluate(arm.Body, env)
		}
	}
	return nil, &Error{
		Code:    ErrCodeFailedMatch,
		Message: "no match arm equals subject identity",
		Path:    ast.Path(id),
	}
}
