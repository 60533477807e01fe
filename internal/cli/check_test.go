package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_ValidWorld(t *testing.T) {
	dir := sampleWorld(t)

	rootOpts := &RootOptions{Format: "text"}
	out, err := execute(t, NewCheckCommand(rootOpts), dir)

	require.NoError(t, err)
	assert.Contains(t, out, "✓ Logic valid (2 regions, 3 locations, 2 items, 0 edges)")
	assert.Contains(t, out, "fingerprint: ")
}

func TestCheck_ValidWorldJSON(t *testing.T) {
	dir := sampleWorld(t)

	rootOpts := &RootOptions{Format: "json"}
	out, err := execute(t, NewCheckCommand(rootOpts), dir)

	require.NoError(t, err)
	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.EqualValues(t, 2, resp.Data["regions"])
	assert.EqualValues(t, 3, resp.Data["locations"])
	assert.EqualValues(t, 2, resp.Data["items"])
	assert.NotEmpty(t, resp.Data["fingerprint"])
}

func TestCheck_FingerprintStableAcrossRuns(t *testing.T) {
	dir := sampleWorld(t)
	rootOpts := &RootOptions{Format: "json"}

	out1, err := execute(t, NewCheckCommand(rootOpts), dir)
	require.NoError(t, err)
	out2, err := execute(t, NewCheckCommand(rootOpts), dir)
	require.NoError(t, err)

	assert.Equal(t, decodeResponse(t, out1).Data["fingerprint"], decodeResponse(t, out2).Data["fingerprint"])
}

func TestCheck_ConfigsetChangesFingerprint(t *testing.T) {
	dir := sampleWorld(t)
	rootOpts := &RootOptions{Format: "json"}

	plain, err := execute(t, NewCheckCommand(rootOpts), dir)
	require.NoError(t, err)
	casual, err := execute(t, NewCheckCommand(rootOpts), dir, "--configset", "Casual")
	require.NoError(t, err)

	assert.NotEqual(t, decodeResponse(t, plain).Data["fingerprint"], decodeResponse(t, casual).Data["fingerprint"])
}

func TestCheck_MissingDir(t *testing.T) {
	rootOpts := &RootOptions{Format: "text"}
	_, err := execute(t, NewCheckCommand(rootOpts), filepath.Join(t.TempDir(), "missing"))

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "NOT_FOUND")
}

func TestCheck_DuplicateDeclaration(t *testing.T) {
	dir := sampleWorld(t)
	writeLogic(t, dir, "zzz_dup.cue", `
stmts: [{stmt: "decl", kind: "item", name: "Sword"}]
`)

	rootOpts := &RootOptions{Format: "text"}
	out, err := execute(t, NewCheckCommand(rootOpts), dir)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "DUPLICATE_DECLARATION")
	assert.Contains(t, out, "Sword")
}

func TestCheck_FailFastStopsAtFirstError(t *testing.T) {
	dir := t.TempDir()
	writeLogic(t, dir, "a.cue", `
stmts: [
	{stmt: "decl", kind: "frobnicate", name: "A"},
	{stmt: "decl", kind: "item", name: "Sword"},
]
`)
	writeLogic(t, dir, "b.cue", `
stmts: [{stmt: "decl", kind: "gadget", name: "B"}]
`)

	rootOpts := &RootOptions{Format: "text"}
	out, err := execute(t, NewCheckCommand(rootOpts), dir)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Check failed (1 error(s)):")
}

func TestCheck_AllErrorsCollects(t *testing.T) {
	dir := t.TempDir()
	writeLogic(t, dir, "a.cue", `
stmts: [
	{stmt: "decl", kind: "frobnicate", name: "A"},
	{stmt: "decl", kind: "item", name: "Sword"},
]
`)
	writeLogic(t, dir, "b.cue", `
stmts: [{stmt: "decl", kind: "gadget", name: "B"}]
`)

	rootOpts := &RootOptions{Format: "text"}
	out, err := execute(t, NewCheckCommand(rootOpts), dir, "--all-errors")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Check failed (2 error(s)):")
}

func TestCheck_AllErrorsJSON(t *testing.T) {
	dir := t.TempDir()
	writeLogic(t, dir, "a.cue", `
stmts: [{stmt: "decl", kind: "frobnicate", name: "A"}]
`)
	writeLogic(t, dir, "b.cue", `
stmts: [{stmt: "decl", kind: "gadget", name: "B"}]
`)

	rootOpts := &RootOptions{Format: "json"}
	out, err := execute(t, NewCheckCommand(rootOpts), dir, "--all-errors")

	require.Error(t, err)
	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CHECK_FAILED", resp.Error.Code)

	errsAny, ok := resp.Error.Details["errors"].([]any)
	require.True(t, ok, "details.errors should be an array")
	assert.Len(t, errsAny, 2)
	for _, e := range errsAny {
		entry, ok := e.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "SCHEMA_VIOLATION", entry["code"])
	}
}

func TestCheck_UnknownConfigset(t *testing.T) {
	dir := sampleWorld(t)

	rootOpts := &RootOptions{Format: "text"}
	out, err := execute(t, NewCheckCommand(rootOpts), dir, "--configset", "Nope")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "UNKNOWN_REFERENCE")
}
