package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/radolang/rado/ast"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // successful execution
	ExitFailure      = 1 // analysis or verification failure (static errors, divergent replay)
	ExitCommandError = 2 // command error (bad arguments, missing directory, unreadable database)
)

// ExitError carries a process exit code alongside the error message.
type ExitError struct {
	Code    int
	Message string
	Err     error // underlying cause, optional
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Returns ExitFailure
// if the error is not an ExitError, ExitSuccess for nil.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands. JSON
// output uses the canonical encoding, so identical results are
// byte-identical across runs and platforms.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostic output; defaults to Writer
	Verbose   bool
}

// Success emits an ok envelope around the payload. Text callers render
// their own output and pass nothing here; in text mode this is a no-op.
func (f *OutputFormatter) Success(data ast.Obj) error {
	if f.Format != "json" {
		return nil
	}
	out, err := ast.MarshalCanonical(ast.Obj{"status": "ok", "data": data})
	if err != nil {
		return err
	}
	fmt.Fprintln(f.Writer, string(out))
	return nil
}

// Error emits an error envelope. JSON mode writes the envelope to the
// main writer so consumers always get a single well-formed document;
// text mode prints a one-line summary plus details under verbose.
func (f *OutputFormatter) Error(code, message string, details ast.Obj) error {
	if f.Format == "json" {
		errObj := ast.Obj{"code": code, "message": message}
		if details != nil {
			errObj["details"] = details
		}
		out, err := ast.MarshalCanonical(ast.Obj{"status": "error", "error": errObj})
		if err != nil {
			return err
		}
		fmt.Fprintln(f.Writer, string(out))
		return nil
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		out, err := ast.MarshalCanonical(details)
		if err == nil {
			fmt.Fprintf(f.Writer, "Details: %s\n", out)
		}
	}
	return nil
}

// VerboseLog prints a diagnostic line when verbose mode is enabled.
// Goes to ErrWriter so it never corrupts JSON on the main writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the diagnostic writer, falling back to Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
