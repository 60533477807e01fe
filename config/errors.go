package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/radolang/rado/ast"
)

// Error represents a failure while collecting or resolving configuration.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the affected configuration path, when one exists.
	Path ast.Path

	// Cycle holds the inclusion chain for config-cycle errors.
	Cycle []ast.Path
}

// ErrorCode categorizes configuration errors.
type ErrorCode string

const (
	// ErrCodeConfigCycle indicates configsets including each other.
	ErrCodeConfigCycle ErrorCode = "CONFIG_CYCLE"

	// ErrCodeUnknownReference indicates an unknown configset or target.
	ErrCodeUnknownReference ErrorCode = "UNKNOWN_REFERENCE"

	// ErrCodeDuplicateDeclaration indicates a config path bound twice.
	ErrCodeDuplicateDeclaration ErrorCode = "DUPLICATE_DECLARATION"

	// ErrCodeSchemaViolation indicates a value outside the declared type.
	ErrCodeSchemaViolation ErrorCode = "SCHEMA_VIOLATION"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Cycle) > 0 {
		parts := make([]string, len(e.Cycle))
		for i, p := range e.Cycle {
			parts[i] = string(p)
		}
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(parts, " -> "))
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigCycle reports whether err is a configset inclusion cycle.
// Uses errors.As to handle wrapped errors.
func IsConfigCycle(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeConfigCycle
}

// IsUnknownReference reports whether err references an unknown configset or
// configuration path.
func IsUnknownReference(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeUnknownReference
}

// IsDuplicateDeclaration reports whether err is a duplicate config binding.
func IsDuplicateDeclaration(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeDuplicateDeclaration
}

// IsSchemaViolation reports whether err is a config type violation.
func IsSchemaViolation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeSchemaViolation
}
