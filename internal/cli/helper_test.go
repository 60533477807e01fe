package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// writeLogic writes one serialized logic source into dir.
func writeLogic(t *testing.T, dir, name, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
	require.NoError(t, err)
}

// sampleWorld lays out a small world: a free Field whose chest supplies
// the Sword, a Keep gated on the Sword (or the OpenKeep config), and a
// Vault inside the Keep gated on the Bomb, which nothing supplies.
func sampleWorld(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeLogic(t, dir, "world.cue", `
stmts: [
	{stmt: "decl", kind: "item", name: "Sword"},
	{stmt: "decl", kind: "item", name: "Bomb"},
	{stmt: "decl", kind: "config", name: "OpenKeep", type: "bool", default: {expr: "bool", value: false}},
	{stmt: "decl", kind: "configset", name: "Casual", entries: [
		{assign: {target: "OpenKeep", value: {expr: "bool", value: true}}},
	]},
	{stmt: "decl", kind: "region", name: "Field", body: [
		{stmt: "decl", kind: "location", name: "Chest", body: [
			{stmt: "prop", prop: "avail", entries: {replace: [
				{target: "Sword", count: {expr: "num", value: 1}},
			]}},
		]},
	]},
	{stmt: "decl", kind: "region", name: "Keep", body: [
		{stmt: "prop", prop: "requires", cond: {expr: "or", terms: [
			{expr: "name", path: "Sword"},
			{expr: "name", path: "OpenKeep"},
		]}},
		{stmt: "decl", kind: "location", name: "Throne"},
		{stmt: "decl", kind: "location", name: "Vault", body: [
			{stmt: "prop", prop: "requires", cond: {expr: "name", path: "Bomb"}},
		]},
	]},
]
`)
	return dir
}

// execute runs a command with captured stdout and returns the output.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// response mirrors the JSON envelope for decoding in assertions.
type response struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data"`
	Error  *responseError `json:"error"`
}

type responseError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func decodeResponse(t *testing.T, out string) response {
	t.Helper()
	var resp response
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}
