// Package ast defines the typed statement tree and value domain of the rado
// logic language.
//
// This package contains type definitions and canonical serialization only.
// Every other package imports ast; ast imports nothing from this module. This
// keeps the tree the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - NO float types anywhere - numbers are exact rationals (*big.Rat)
//   - Statement trees are never mutated after construction; resolvers build
//     new trees instead
//   - Sealed interfaces (Stmt, Decl, Prop, Expr, Value) via unexported
//     marker methods
//   - Canonical JSON (RFC 8785 ordering, NFC strings) is the only encoding
//     used for hashing and golden traces
package ast
