package ast

import (
	"strings"
)

// FormatExpr renders an expression in source-like notation, for diagnostics
// and the explain command. The output is deterministic but not guaranteed
// to re-parse; it is a display form.
func FormatExpr(e Expr) string {
	var b strings.Builder
	formatExpr(&b, e, precLowest)
	return b.String()
}

// Operator precedence levels for parenthesization, loosest first.
const (
	precLowest = iota
	precOr
	precAnd
	precNot
	precCmp
	precAdd
	precMul
	precAtom
)

func binPrec(op BinOp) int {
	switch op {
	case OpMul, OpDiv, OpMod:
		return precMul
	case OpAdd, OpSub:
		return precAdd
	default:
		return precCmp
	}
}

func formatExpr(b *strings.Builder, e Expr, outer int) {
	switch x := e.(type) {
	case nil:
		b.WriteString("true")
	case *NumLit:
		b.WriteString(x.Value.RatString())
	case *BoolLit:
		if x.Value {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case *NameExpr:
		b.WriteString(string(x.Path))
	case *CallExpr:
		b.WriteString(string(x.Fn))
		formatArgs(b, x.Args)
	case *BuiltinExpr:
		b.WriteString(x.Op.String())
		formatArgs(b, x.Args)
	case *NotExpr:
		open := precNot < outer
		if open {
			b.WriteByte('(')
		}
		b.WriteString("not ")
		formatExpr(b, x.X, precNot)
		if open {
			b.WriteByte(')')
		}
	case *BinExpr:
		p := binPrec(x.Op)
		open := p < outer
		if open {
			b.WriteByte('(')
		}
		formatExpr(b, x.L, p)
		b.WriteByte(' ')
		b.WriteString(x.Op.String())
		b.WriteByte(' ')
		formatExpr(b, x.R, p+1)
		if open {
			b.WriteByte(')')
		}
	case *AndExpr:
		formatNary(b, "and", x.Terms, precAnd, outer)
	case *OrExpr:
		formatNary(b, "or", x.Terms, precOr, outer)
	case *IfExpr:
		open := precLowest < outer
		if open {
			b.WriteByte('(')
		}
		b.WriteString("if ")
		formatExpr(b, x.Cond, precLowest)
		b.WriteString(" then ")
		formatExpr(b, x.Then, precLowest)
		b.WriteString(" else ")
		formatExpr(b, x.Else, precLowest)
		if open {
			b.WriteByte(')')
		}
	case *MatchExpr:
		b.WriteString("match ")
		formatExpr(b, x.Subject, precAtom)
		b.WriteString(" { ")
		for i, arm := range x.Arms {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(string(arm.Pattern))
			b.WriteString(" => ")
			formatExpr(b, arm.Body, precLowest)
		}
		b.WriteString(" }")
	}
}

func formatNary(b *strings.Builder, word string, terms []Expr, p, outer int) {
	switch len(terms) {
	case 0:
		// empty conjunction is vacuously true, empty disjunction false
		if word == "and" {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
		return
	case 1:
		formatExpr(b, terms[0], outer)
		return
	}
	open := p < outer
	if open {
		b.WriteByte('(')
	}
	for i, t := range terms {
		if i > 0 {
			b.WriteByte(' ')
			b.WriteString(word)
			b.WriteByte(' ')
		}
		formatExpr(b, t, p+1)
	}
	if open {
		b.WriteByte(')')
	}
}

func formatArgs(b *strings.Builder, args []Expr) {
	b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		formatExpr(b, a, precLowest)
	}
	b.WriteByte(')')
}
