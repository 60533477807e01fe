package eval

import (
	"errors"
	"fmt"

	"github.com/radolang/rado/ast"
)

// Error represents a failure detected during expression evaluation.
//
// Evaluation errors include:
//   - Unresolved path: a name resolves to nothing in the environment
//   - Division by zero: / or % with a zero divisor
//   - Failed match: no match arm equals the subject's identity
//   - Schema violation: type mismatch, bad arity, or a malformed construct
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the offending reference, when one exists.
	Path ast.Path
}

// ErrorCode categorizes evaluation errors.
type ErrorCode string

const (
	// ErrCodeUnresolvedPath indicates a name that resolves to nothing.
	ErrCodeUnresolvedPath ErrorCode = "UNRESOLVED_PATH"

	// ErrCodeDivisionByZero indicates / or % with divisor zero.
	ErrCodeDivisionByZero ErrorCode = "DIVISION_BY_ZERO"

	// ErrCodeFailedMatch indicates a match whose subject equals no arm.
	ErrCodeFailedMatch ErrorCode = "FAILED_MATCH"

	// ErrCodeSchemaViolation indicates a type mismatch or malformed construct.
	ErrCodeSchemaViolation ErrorCode = "SCHEMA_VIOLATION"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnresolvedPath reports whether err is an unresolved-path error.
// Uses errors.As to handle wrapped errors.
func IsUnresolvedPath(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeUnresolvedPath
}

// IsDivisionByZero reports whether err is a division-by-zero error.
func IsDivisionByZero(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeDivisionByZero
}

// IsFailedMatch reports whether err is a failed-match error.
func IsFailedMatch(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeFailedMatch
}

// IsSchemaViolation reports whether err is a schema-violation error.
func IsSchemaViolation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeSchemaViolation
}

// newUnresolved creates an unresolved-path error for a reference.
func newUnresolved(path ast.Path) *Error {
	return &Error{
		Code:    ErrCodeUnresolvedPath,
		Message: "name resolves to nothing in this environment",
		Path:    path,
	}
}

// newSchema creates a schema-violation error.
func newSchema(format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeSchemaViolation,
		Message: fmt.Sprintf(format, args...),
	}
}
