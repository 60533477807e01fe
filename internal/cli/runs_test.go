package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radolang/rado/internal/store"
)

// journalRuns records runs with fixed ids and timestamps so listing
// order is deterministic.
func journalRuns(t *testing.T, dbPath string, runs ...store.Run) {
	t.Helper()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	for _, run := range runs {
		_, err := st.RecordRun(context.Background(), run)
		require.NoError(t, err)
	}
}

func TestRuns_Empty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	journalRuns(t, dbPath) // creates the schema, records nothing

	rootOpts := &RootOptions{Format: "text", Database: dbPath}
	out, err := execute(t, NewRunsCommand(rootOpts))

	require.NoError(t, err)
	assert.Contains(t, out, "No runs journaled.")
}

func TestRuns_ListsNewestFirst(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	journalRuns(t, dbPath,
		store.Run{ID: "run-older", CreatedAt: base, GraphFP: "aaaa1111", Steps: 10, Sweeps: 2},
		store.Run{ID: "run-newer", CreatedAt: base.Add(time.Hour), GraphFP: "bbbb2222", Steps: 12, Sweeps: 3},
	)

	rootOpts := &RootOptions{Format: "text", Database: dbPath}
	out, err := execute(t, NewRunsCommand(rootOpts))

	require.NoError(t, err)
	assert.Contains(t, out, "2 run(s):")
	assert.Less(t, strings.Index(out, "run-newer"), strings.Index(out, "run-older"))
	assert.Contains(t, out, "fp=aaaa1111")
	assert.Contains(t, out, "steps=12 sweeps=3")
}

func TestRuns_Limit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	journalRuns(t, dbPath,
		store.Run{ID: "run-1", CreatedAt: base, GraphFP: "fp1"},
		store.Run{ID: "run-2", CreatedAt: base.Add(time.Minute), GraphFP: "fp2"},
		store.Run{ID: "run-3", CreatedAt: base.Add(2 * time.Minute), GraphFP: "fp3"},
	)

	rootOpts := &RootOptions{Format: "text", Database: dbPath}
	out, err := execute(t, NewRunsCommand(rootOpts), "--limit", "2")

	require.NoError(t, err)
	assert.Contains(t, out, "2 run(s):")
	assert.Contains(t, out, "run-3")
	assert.Contains(t, out, "run-2")
	assert.NotContains(t, out, "run-1")
}

func TestRuns_JSON(t *testing.T) {
	dir := sampleWorld(t)
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	rootOpts := &RootOptions{Format: "json", Database: dbPath}
	_, err := execute(t, NewReachCommand(rootOpts), dir, "--journal")
	require.NoError(t, err)

	out, err := execute(t, NewRunsCommand(rootOpts))

	require.NoError(t, err)
	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.EqualValues(t, 1, resp.Data["count"])

	runs, ok := resp.Data["runs"].([]any)
	require.True(t, ok)
	require.Len(t, runs, 1)
	entry, ok := runs[0].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, entry["id"])
	assert.NotEmpty(t, entry["fingerprint"])
	assert.NotEmpty(t, entry["created_at"])
}

func TestRuns_RequiresDB(t *testing.T) {
	rootOpts := &RootOptions{Format: "text"}
	_, err := execute(t, NewRunsCommand(rootOpts))

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "runs requires")
}
