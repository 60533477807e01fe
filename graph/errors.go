package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/radolang/rado/ast"
)

// Error represents a failure while building a logic graph.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the offending path: the unresolved reference, the recursive
	// function, or the malformed declaration.
	Path ast.Path

	// Site is the declaration whose expression or property referenced
	// Path, when distinct from it.
	Site ast.Path

	// Cycle holds the function call cycle for recursive-function errors.
	Cycle []ast.Path
}

// ErrorCode categorizes graph build errors.
type ErrorCode string

const (
	// ErrCodeUnresolvedPath indicates a reference no declaration, item,
	// flag, function, enum variant, or configuration value satisfies.
	ErrCodeUnresolvedPath ErrorCode = "UNRESOLVED_PATH"

	// ErrCodeRecursiveFunction indicates a cycle in the function call
	// graph. Detected statically; recursive definitions never reach
	// evaluation.
	ErrCodeRecursiveFunction ErrorCode = "RECURSIVE_FUNCTION"

	// ErrCodeSchemaViolation indicates structurally invalid input: bad
	// quantities, malformed links, non-boolean requirements, arity
	// mismatches.
	ErrCodeSchemaViolation ErrorCode = "SCHEMA_VIOLATION"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case len(e.Cycle) > 0:
		parts := make([]string, len(e.Cycle))
		for i, p := range e.Cycle {
			parts[i] = string(p)
		}
		return fmt.Sprintf("%s: %s (cycle: %s)", e.Code, e.Message, strings.Join(parts, " -> "))
	case e.Site != "" && e.Site != e.Path:
		return fmt.Sprintf("%s: %s (path=%s, site=%s)", e.Code, e.Message, e.Path, e.Site)
	case e.Path != "":
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, e.Path)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsUnresolvedPath reports whether err is an unresolved reference.
// Uses errors.As to handle wrapped errors.
func IsUnresolvedPath(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeUnresolvedPath
}

// IsRecursiveFunction reports whether err is a function call cycle.
func IsRecursiveFunction(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeRecursiveFunction
}

// IsSchemaViolation reports whether err is a structural violation.
func IsSchemaViolation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeSchemaViolation
}
