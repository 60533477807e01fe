package loader

import (
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue/token"
)

// ErrorCode classifies loader failures.
type ErrorCode string

const (
	// ErrCodeNotFound is a missing or unreadable source directory.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeLoadFailed is a CUE load or build failure.
	ErrCodeLoadFailed ErrorCode = "LOAD_FAILED"
	// ErrCodeSchemaViolation is a statement object that does not match the
	// serialized form: unknown tags, missing fields, float tokens.
	ErrCodeSchemaViolation ErrorCode = "SCHEMA_VIOLATION"
)

// Error is a loader failure with its source position when one is known.
type Error struct {
	Code    ErrorCode
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrorList aggregates per-statement failures under LoadModeCollectAll.
type ErrorList []*Error

func (l ErrorList) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

// IsNotFound reports whether err is a missing-directory error.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsLoadFailed reports whether err is a CUE load or build failure.
func IsLoadFailed(err error) bool {
	return hasCode(err, ErrCodeLoadFailed)
}

// IsSchemaViolation reports whether err is a malformed statement object.
func IsSchemaViolation(err error) bool {
	return hasCode(err, ErrCodeSchemaViolation)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
