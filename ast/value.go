package ast

import "math/big"

// Value is the sealed runtime value interface. Only NumValue, BoolValue,
// and PathValue implement it. There is no float variant anywhere; numbers
// are exact rationals.
type Value interface {
	value() // Sealed - only these types implement it
	String() string
}

// NumValue is an exact rational. The *big.Rat is treated as immutable;
// callers must not mutate it after construction.
type NumValue struct {
	Rat *big.Rat
}

func (NumValue) value() {}

// String renders the canonical form: "p/q", or just "p" for integers.
func (v NumValue) String() string {
	return v.Rat.RatString()
}

// IsInt reports whether the value is a whole number.
func (v NumValue) IsInt() bool {
	return v.Rat.IsInt()
}

// Num wraps a rational into a NumValue.
func Num(r *big.Rat) NumValue {
	return NumValue{Rat: r}
}

// NumFromInt builds a whole-number value.
func NumFromInt(n int64) NumValue {
	return NumValue{Rat: big.NewRat(n, 1)}
}

// BoolValue is a boolean.
type BoolValue bool

func (BoolValue) value() {}

func (v BoolValue) String() string {
	if v {
		return "true"
	}
	return "false"
}

// PathValue is an identity: an enum variant or a declaration reference,
// compared by path.
type PathValue Path

func (PathValue) value() {}

func (v PathValue) String() string {
	return string(v)
}

// Equal reports semantic value equality: rationals by numeric comparison,
// booleans and path identities by identity. Values of different sorts are
// never equal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case NumValue:
		bv, ok := b.(NumValue)
		return ok && av.Rat.Cmp(bv.Rat) == 0
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av == bv
	case PathValue:
		bv, ok := b.(PathValue)
		return ok && av == bv
	default:
		return false
	}
}
