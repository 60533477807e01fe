package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radolang/rado/ast"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	err := f.Success(ast.Obj{"count": 3, "name": "field"})
	require.NoError(t, err)

	assert.Equal(t, `{"data":{"count":3,"name":"field"},"status":"ok"}`+"\n", buf.String())
}

func TestOutputFormatter_JSONSuccessDeterministic(t *testing.T) {
	first := &bytes.Buffer{}
	second := &bytes.Buffer{}
	data := ast.Obj{"b": 2, "a": 1, "c": ast.Obj{"z": true, "y": false}}

	require.NoError(t, (&OutputFormatter{Format: "json", Writer: first}).Success(data))
	require.NoError(t, (&OutputFormatter{Format: "json", Writer: second}).Success(data))

	assert.Equal(t, first.String(), second.String())
}

func TestOutputFormatter_TextSuccessIsSilent(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, f.Success(ast.Obj{"ignored": true}))
	assert.Empty(t, buf.String())
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	err := f.Error("UNRESOLVED_PATH", "no node at path", nil)
	require.NoError(t, err)

	assert.Equal(t, `{"error":{"code":"UNRESOLVED_PATH","message":"no node at path"},"status":"error"}`+"\n", buf.String())
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	err := f.Error("CHECK_FAILED", "1 error(s)", ast.Obj{"errors": ast.Arr{ast.Obj{"code": "X"}}})
	require.NoError(t, err)

	resp := decodeResponse(t, buf.String())
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CHECK_FAILED", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "errors")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, f.Error("NEGATIVE_CYCLE", "cycle through negation", nil))
	assert.Equal(t, "Error [NEGATIVE_CYCLE]: cycle through negation\n", buf.String())
}

func TestOutputFormatter_TextErrorVerboseDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	require.NoError(t, f.Error("X", "boom", ast.Obj{"path": "Keep"}))
	assert.Contains(t, buf.String(), "Error [X]: boom")
	assert.Contains(t, buf.String(), `{"path":"Keep"}`)
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}

	f.VerboseLog("loaded %d sources", 3)

	assert.Empty(t, out.String(), "verbose output must not touch the main writer")
	assert.Equal(t, "loaded 3 sources\n", errOut.String())
}

func TestOutputFormatter_VerboseLogDisabled(t *testing.T) {
	errOut := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: &bytes.Buffer{}, ErrWriter: errOut}

	f.VerboseLog("should not appear")
	assert.Empty(t, errOut.String())
}

func TestExitError_Message(t *testing.T) {
	err := NewExitError(ExitFailure, "check failed")
	assert.Equal(t, "check failed", err.Error())
	assert.Equal(t, ExitFailure, err.Code)
}

func TestExitError_Wrapped(t *testing.T) {
	cause := fmt.Errorf("no such table")
	err := WrapExitError(ExitCommandError, "open journal", cause)

	assert.Equal(t, "open journal: no such table", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "usage")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitFailure, "inner"))))
}
