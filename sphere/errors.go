package sphere

import (
	"errors"
	"fmt"
	"strings"

	"github.com/radolang/rado/ast"
)

// Error represents a failure during an accessibility query. Query errors
// never invalidate the graph; the caller may retry with corrected input.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the offending path, when one exists: the unknown inventory
	// entry, the bad placement target, or a node on a negative cycle.
	Path ast.Path

	// Cycle holds the dependence cycle for negative-cycle errors, closed
	// back on its first element.
	Cycle []ast.Path

	// Steps and Limit report the budget state for budget-exceeded errors.
	Steps int
	Limit int

	// Err is the underlying cause, when the failure wraps one.
	Err error
}

// ErrorCode categorizes query errors.
type ErrorCode string

const (
	// ErrCodeUnknownReference indicates a query input naming a path the
	// graph does not track: an inventory entry or a placement target.
	ErrCodeUnknownReference ErrorCode = "UNKNOWN_REFERENCE"

	// ErrCodeNegativeCycle indicates requirements that block each other
	// through negation, leaving no order-independent answer.
	ErrCodeNegativeCycle ErrorCode = "NEGATIVE_CYCLE"

	// ErrCodeBudgetExceeded indicates the query spent its step budget
	// before the fixed point converged.
	ErrCodeBudgetExceeded ErrorCode = "BUDGET_EXCEEDED"

	// ErrCodeCanceled indicates the query's context was canceled between
	// sweeps.
	ErrCodeCanceled ErrorCode = "CANCELED"

	// ErrCodeSchemaViolation indicates malformed query input: a negative
	// inventory count, a placement into a non-placeable node.
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
	case e.Code == ErrCodeBudgetExceeded:
		return fmt.Sprintf("%s: %s (%d steps > %d limit)", e.Code, e.Message, e.Steps, e.Limit)
	case e.Path != "":
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, e.Path)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap exposes the underlying cause for errors.Is chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnknownReference reports whether err names a path the graph does not
// track. Uses errors.As to handle wrapped errors.
func IsUnknownReference(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeUnknownReference
}

// IsNegativeCycle reports whether err is a circular negative dependence.
func IsNegativeCycle(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeNegativeCycle
}

// IsBudgetExceeded reports whether err is a spent step budget.
func IsBudgetExceeded(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeBudgetExceeded
}

// IsCanceled reports whether err is a canceled query.
func IsCanceled(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeCanceled
}

// IsSchemaViolation reports whether err is malformed query input.
func IsSchemaViolation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeSchemaViolation
}
