package ast

import "math/big"

// Expr is the sealed expression interface.
type Expr interface {
	expr() // Sealed - only the types below implement it
}

// NumLit is an exact rational literal. The *big.Rat must not be mutated
// after construction; use Int or Frac.
type NumLit struct {
	Value *big.Rat
}

func (*NumLit) expr() {}

// Int builds an integer literal.
func Int(n int64) *NumLit {
	return &NumLit{Value: big.NewRat(n, 1)}
}

// Frac builds a rational literal p/q. q must be nonzero.
func Frac(p, q int64) *NumLit {
	return &NumLit{Value: big.NewRat(p, q)}
}

// BoolLit is a boolean literal.
type BoolLit struct {
	Value bool
}

func (*BoolLit) expr() {}

// True and False are shared boolean literals.
var (
	True  = &BoolLit{Value: true}
	False = &BoolLit{Value: false}
)

// NameExpr references a path: a config, enum variant, item, unlock flag,
// function parameter, local val, or declaration identity, resolved in that
// order by the evaluator's environment.
type NameExpr struct {
	Path Path
}

func (*NameExpr) expr() {}

// Ref builds a NameExpr.
func Ref(p Path) *NameExpr {
	return &NameExpr{Path: p}
}

// CallExpr calls a declared function with positional arguments.
type CallExpr struct {
	Fn   Path
	Args []Expr
}

func (*CallExpr) expr() {}

// Builtin tags one of the built-in reductions.
type Builtin int

const (
	// BuiltinCount counts how many of the listed paths are held at least
	// once. Quantity beyond one and duplicate listings do not raise it.
	BuiltinCount Builtin = iota
	BuiltinMin
	BuiltinMax
	BuiltinSum
)

func (b Builtin) String() string {
	switch b {
	case BuiltinCount:
		return "count"
	case BuiltinMin:
		return "min"
	case BuiltinMax:
		return "max"
	case BuiltinSum:
		return "sum"
	default:
		return "unknown"
	}
}

// BuiltinExpr applies a built-in reduction to its arguments.
type BuiltinExpr struct {
	Op   Builtin
	Args []Expr
}

func (*BuiltinExpr) expr() {}

// NotExpr negates a boolean term. The optimistic phase of the accessibility
// fixed point relaxes it to true; the real phase evaluates it exactly.
type NotExpr struct {
	X Expr
}

func (*NotExpr) expr() {}

// Not builds a NotExpr.
func Not(x Expr) *NotExpr {
	return &NotExpr{X: x}
}

// BinOp tags a binary operator.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv // exact rational division; divisor zero is a division-by-zero error
	OpMod // a - b*floor(a/b), sign-correct for negative operands
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	default:
		return "unknown"
	}
}

// BinExpr applies a binary operator.
type BinExpr struct {
	Op BinOp
	L  Expr
	R  Expr
}

func (*BinExpr) expr() {}

// Bin builds a BinExpr.
func Bin(op BinOp, l, r Expr) *BinExpr {
	return &BinExpr{Op: op, L: l, R: r}
}

// AndExpr is n-ary conjunction, evaluated left to right with short-circuit.
type AndExpr struct {
	Terms []Expr
}

func (*AndExpr) expr() {}

// And builds an AndExpr.
func And(terms ...Expr) *AndExpr {
	return &AndExpr{Terms: terms}
}

// OrExpr is n-ary disjunction, evaluated left to right with short-circuit.
type OrExpr struct {
	Terms []Expr
}

func (*OrExpr) expr() {}

// Or builds an OrExpr.
func Or(terms ...Expr) *OrExpr {
	return &OrExpr{Terms: terms}
}

// IfExpr evaluates the condition, then exactly one branch.
type IfExpr struct {
	Cond Expr
	Then Expr
	Else Expr
}

func (*IfExpr) expr() {}

// MatchArm is one match alternative: a path pattern and its result.
type MatchArm struct {
	Pattern Path
	Body    Expr
}

// MatchExpr compares the subject's path identity against arm patterns in
// order and evaluates the first hit's body. No hit is a failed-match error.
type MatchExpr struct {
	Subject Expr
	Arms    []MatchArm
}

func (*MatchExpr) expr() {}
