package store

import (
	"context"
	"database/sql"
	"errors"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/radolang/rado/ast"
)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"), opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(id string) Run {
	return Run{
		ID:        id,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		GraphFP:   "c0ffee00",
		Config: map[ast.Path]ast.Value{
			"Rules.KeyShare":   ast.Num(big.NewRat(2, 3)),
			"Rules.OpenWorld":  ast.BoolValue(true),
			"Rules.Difficulty": ast.PathValue("Rules.Difficulty.Hard"),
		},
		Inventory: map[ast.Path]int64{"Sword": 1, "Bomb": 3},
		Placement: map[ast.Path]ast.Path{"Field.Chest": "Bomb"},
		Steps:     42,
		Sweeps:    3,
		Results: []Result{
			{Path: "Field", Accessible: true, Visible: true},
			{Path: "Field.Chest", Accessible: true, Visible: false},
			{Path: "Keep.Throne", Accessible: false, Visible: true},
		},
	}
}

func TestRecordRun_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := sampleRun("run-1")
	id, err := s.RecordRun(ctx, want)
	if err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}
	if id != "run-1" {
		t.Errorf("RecordRun() id = %q, want %q", id, "run-1")
	}

	got, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}

	if got.ID != want.ID {
		t.Errorf("ID = %q, want %q", got.ID, want.ID)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	if got.GraphFP != want.GraphFP {
		t.Errorf("GraphFP = %q, want %q", got.GraphFP, want.GraphFP)
	}
	if got.Steps != want.Steps || got.Sweeps != want.Sweeps {
		t.Errorf("Steps/Sweeps = %d/%d, want %d/%d", got.Steps, got.Sweeps, want.Steps, want.Sweeps)
	}

	if len(got.Config) != len(want.Config) {
		t.Fatalf("Config has %d entries, want %d", len(got.Config), len(want.Config))
	}
	for p, v := range want.Config {
		if !ast.Equal(got.Config[p], v) {
			t.Errorf("Config[%s] = %v, want %v", p, got.Config[p], v)
		}
	}

	if len(got.Inventory) != len(want.Inventory) {
		t.Fatalf("Inventory has %d entries, want %d", len(got.Inventory), len(want.Inventory))
	}
	for p, n := range want.Inventory {
		if got.Inventory[p] != n {
			t.Errorf("Inventory[%s] = %d, want %d", p, got.Inventory[p], n)
		}
	}

	if len(got.Placement) != len(want.Placement) {
		t.Fatalf("Placement has %d entries, want %d", len(got.Placement), len(want.Placement))
	}
	for loc, item := range want.Placement {
		if got.Placement[loc] != item {
			t.Errorf("Placement[%s] = %s, want %s", loc, got.Placement[loc], item)
		}
	}

	if len(got.Results) != len(want.Results) {
		t.Fatalf("Results has %d entries, want %d", len(got.Results), len(want.Results))
	}
	for i, r := range want.Results {
		if got.Results[i] != r {
			t.Errorf("Results[%d] = %+v, want %+v", i, got.Results[i], r)
		}
	}
}

func TestRecordRun_AssignsIDAndTimestamp(t *testing.T) {
	s := openTestStore(t, WithIDSource(NewFixedSource("fixed-1", "fixed-2")))
	ctx := context.Background()

	run := sampleRun("")
	run.CreatedAt = time.Time{}

	id, err := s.RecordRun(ctx, run)
	if err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}
	if id != "fixed-1" {
		t.Errorf("RecordRun() id = %q, want %q", id, "fixed-1")
	}

	got, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt was not stamped")
	}
}

func TestRecordRun_DefaultIDsAreUUIDv7(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := sampleRun("")
	id, err := s.RecordRun(ctx, run)
	if err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}

	u, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("assigned id %q is not a UUID: %v", id, err)
	}
	if u.Version() != 7 {
		t.Errorf("assigned id version = %d, want 7", u.Version())
	}
}

func TestRecordRun_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := sampleRun("run-1")
	if _, err := s.RecordRun(ctx, run); err != nil {
		t.Fatalf("first RecordRun() failed: %v", err)
	}
	if _, err := s.RecordRun(ctx, run); err != nil {
		t.Fatalf("second RecordRun() failed: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM results WHERE run_id = 'run-1'").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != len(run.Results) {
		t.Errorf("results count after re-record = %d, want %d", count, len(run.Results))
	}
}

func TestRecordRun_FixedSourceExhausted(t *testing.T) {
	s := openTestStore(t, WithIDSource(NewFixedSource("only-one")))
	ctx := context.Background()

	if _, err := s.RecordRun(ctx, sampleRun("")); err != nil {
		t.Fatalf("first RecordRun() failed: %v", err)
	}
	if _, err := s.RecordRun(ctx, sampleRun("")); err == nil {
		t.Error("expected error after id source exhaustion, got nil")
	}
}

func TestRecordRun_NoResults(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := sampleRun("run-1")
	run.Results = nil
	run.Config = nil
	run.Inventory = nil
	run.Placement = nil

	id, err := s.RecordRun(ctx, run)
	if err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}
	got, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}
	if len(got.Results) != 0 || len(got.Config) != 0 || len(got.Inventory) != 0 || len(got.Placement) != 0 {
		t.Errorf("empty run round trip = %+v, want empty results/config/inventory/placement", got)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetRun() error = %v, want sql.ErrNoRows", err)
	}
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		run := sampleRun(id)
		run.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if _, err := s.RecordRun(ctx, run); err != nil {
			t.Fatalf("RecordRun(%s) failed: %v", id, err)
		}
	}

	all, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	wantOrder := []string{"run-c", "run-b", "run-a"}
	if len(all) != len(wantOrder) {
		t.Fatalf("ListRuns() returned %d runs, want %d", len(all), len(wantOrder))
	}
	for i, id := range wantOrder {
		if all[i].ID != id {
			t.Errorf("ListRuns()[%d].ID = %q, want %q", i, all[i].ID, id)
		}
	}

	limited, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns(2) failed: %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "run-c" || limited[1].ID != "run-b" {
		t.Errorf("ListRuns(2) = %+v, want run-c then run-b", limited)
	}
}

func TestListRuns_TieBreaksOnID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"run-a", "run-b"} {
		run := sampleRun(id)
		run.CreatedAt = at
		if _, err := s.RecordRun(ctx, run); err != nil {
			t.Fatalf("RecordRun(%s) failed: %v", id, err)
		}
	}

	all, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != "run-b" || all[1].ID != "run-a" {
		t.Errorf("ListRuns() = %+v, want run-b then run-a", all)
	}
}

func TestListRuns_SubsecondOrdering(t *testing.T) {
	// Fixed-width fractional seconds keep TEXT order chronological even
	// when one timestamp has fewer significant digits than another.
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	early := sampleRun("run-early")
	early.CreatedAt = base.Add(100 * time.Millisecond)
	late := sampleRun("run-late")
	late.CreatedAt = base.Add(123456789 * time.Nanosecond)

	for _, run := range []Run{early, late} {
		if _, err := s.RecordRun(ctx, run); err != nil {
			t.Fatalf("RecordRun(%s) failed: %v", run.ID, err)
		}
	}

	all, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != "run-late" || all[1].ID != "run-early" {
		t.Errorf("ListRuns() = %+v, want run-late then run-early", all)
	}
}

func TestLastRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	older := sampleRun("run-old")
	older.CreatedAt = base
	newer := sampleRun("run-new")
	newer.CreatedAt = base.Add(time.Minute)

	for _, run := range []Run{older, newer} {
		if _, err := s.RecordRun(ctx, run); err != nil {
			t.Fatalf("RecordRun(%s) failed: %v", run.ID, err)
		}
	}

	got, err := s.LastRun(ctx)
	if err != nil {
		t.Fatalf("LastRun() failed: %v", err)
	}
	if got.ID != "run-new" {
		t.Errorf("LastRun().ID = %q, want %q", got.ID, "run-new")
	}
	if len(got.Results) != len(newer.Results) {
		t.Errorf("LastRun() has %d results, want %d", len(got.Results), len(newer.Results))
	}
}

func TestLastRun_EmptyJournal(t *testing.T) {
	s := openTestStore(t)

	_, err := s.LastRun(context.Background())
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("LastRun() error = %v, want sql.ErrNoRows", err)
	}
}
