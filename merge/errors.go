package merge

import (
	"errors"
	"fmt"

	"github.com/radolang/rado/ast"
)

// Error represents a failure while folding sources into a tree.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the declaration path the statement addressed.
	Path ast.Path

	// Source names the source being folded when the error surfaced.
	Source string
}

// ErrorCode categorizes merge errors.
type ErrorCode string

const (
	// ErrCodeDuplicateDeclaration indicates a bind to an occupied path,
	// including tombstoned ones.
	ErrCodeDuplicateDeclaration ErrorCode = "DUPLICATE_DECLARATION"

	// ErrCodeUnknownReference indicates a modify, override, or delete whose
	// target does not exist or is tombstoned.
	ErrCodeUnknownReference ErrorCode = "UNKNOWN_REFERENCE"

	// ErrCodeNonStaticCondition indicates a merge-time conditional that
	// references anything outside the configuration snapshot.
	ErrCodeNonStaticCondition ErrorCode = "NON_STATIC_CONDITION"

	// ErrCodeModifyListBaseMissing indicates a list patch against a
	// property with no prior list value.
	ErrCodeModifyListBaseMissing ErrorCode = "MODIFY_LIST_BASE_MISSING"

	// ErrCodeSchemaViolation indicates a kind mismatch or a property in an
	// illegal position.
	ErrCodeSchemaViolation ErrorCode = "SCHEMA_VIOLATION"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Source != "":
		return fmt.Sprintf("%s: %s (path=%s, source=%s)", e.Code, e.Message, e.Path, e.Source)
	case e.Path != "":
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, e.Path)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsDuplicateDeclaration reports whether err is a duplicate binding.
// Uses errors.As to handle wrapped errors.
func IsDuplicateDeclaration(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeDuplicateDeclaration
}

// IsUnknownReference reports whether err targets a missing declaration.
func IsUnknownReference(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeUnknownReference
}

// IsNonStaticCondition reports whether err is a non-static conditional.
func IsNonStaticCondition(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeNonStaticCondition
}

// IsModifyListBaseMissing reports whether err is a patch without a base
// list.
func IsModifyListBaseMissing(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeModifyListBaseMissing
}

// IsSchemaViolation reports whether err is a structural violation.
func IsSchemaViolation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeSchemaViolation
}
