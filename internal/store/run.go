package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radolang/rado/ast"
)

// Run is one recorded accessibility analysis. Config, Inventory, and
// Placement capture the query inputs, so a run can be re-executed
// against the same sources and compared.
type Run struct {
	ID        string
	CreatedAt time.Time
	GraphFP   string
	Config    map[ast.Path]ast.Value
	Inventory map[ast.Path]int64
	Placement map[ast.Path]ast.Path
	Steps     int
	Sweeps    int

	// Results holds the per-path outcomes in binding order.
	Results []Result
}

// Result is one per-path outcome.
type Result struct {
	Path       ast.Path
	Accessible bool
	Visible    bool
}

// RunSummary is a run row without its results, for listings.
type RunSummary struct {
	ID        string
	CreatedAt time.Time
	GraphFP   string
	Steps     int
	Sweeps    int
}

// timeLayout is RFC 3339 with fixed nanosecond width. Fixed width keeps
// lexicographic TEXT order equal to chronological order, which ORDER BY
// created_at depends on.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunIDSource produces run identifiers.
type RunIDSource interface {
	NewID() (string, error)
}

// UUIDSource issues UUIDv7 run ids. Version 7 ids are time-sortable, so
// id order and creation order agree.
type UUIDSource struct{}

// NewID implements RunIDSource.
func (UUIDSource) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("new run id: %w", err)
	}
	return id.String(), nil
}

// FixedSource returns ids from a fixed list, for deterministic tests and
// golden journals.
type FixedSource struct {
	ids  []string
	next int
}

// NewFixedSource creates a source that hands out the given ids in order.
func NewFixedSource(ids ...string) *FixedSource {
	return &FixedSource{ids: ids}
}

// NewID implements RunIDSource. Running past the fixed list is an error.
func (s *FixedSource) NewID() (string, error) {
	if s.next >= len(s.ids) {
		return "", fmt.Errorf("fixed id source exhausted after %d ids", len(s.ids))
	}
	id := s.ids[s.next]
	s.next++
	return id, nil
}

// RecordRun writes a run and its results in one transaction and returns
// the run id. An empty ID is assigned from the store's id source; a zero
// CreatedAt is stamped with the current UTC time.
//
// Uses ON CONFLICT DO NOTHING for idempotency - re-recording an id is
// silently ignored.
func (s *Store) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		id, err := s.ids.NewID()
		if err != nil {
			return "", fmt.Errorf("record run: %w", err)
		}
		run.ID = id
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	cfgJSON, err := marshalConfig(run.Config)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	invJSON, err := marshalInventory(run.Inventory)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	placeJSON, err := marshalPlacement(run.Placement)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("record run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, created_at, graph_fp, config_json, inventory_json, placement_json, steps, sweeps)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.CreatedAt.UTC().Format(timeLayout),
		run.GraphFP,
		cfgJSON,
		invJSON,
		placeJSON,
		run.Steps,
		run.Sweeps,
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}

	for seq, r := range run.Results {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO results
			(run_id, seq, path, accessible, visible)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(run_id, seq) DO NOTHING
		`,
			run.ID,
			seq,
			string(r.Path),
			r.Accessible,
			r.Visible,
		)
		if err != nil {
			return "", fmt.Errorf("record run: result %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("record run: commit: %w", err)
	}
	return run.ID, nil
}

// GetRun retrieves a run and its results by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, graph_fp, config_json, inventory_json, placement_json, steps, sweeps
		FROM runs
		WHERE id = ?
	`, id)

	var (
		run       Run
		createdAt string
		cfgJSON   string
		invJSON   string
		placeJSON string
	)
	if err := row.Scan(&run.ID, &createdAt, &run.GraphFP, &cfgJSON, &invJSON, &placeJSON, &run.Steps, &run.Sweeps); err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: parse created_at: %w", id, err)
	}
	run.CreatedAt = t

	if run.Config, err = unmarshalConfig(cfgJSON); err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	if run.Inventory, err = unmarshalInventory(invJSON); err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	if run.Placement, err = unmarshalPlacement(placeJSON); err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT path, accessible, visible
		FROM results
		WHERE run_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: results: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var r Result
		var path string
		if err := rows.Scan(&path, &r.Accessible, &r.Visible); err != nil {
			return Run{}, fmt.Errorf("get run %s: scan result: %w", id, err)
		}
		r.Path = ast.Path(path)
		run.Results = append(run.Results, r)
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("get run %s: results: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the newest runs first, without their results.
// A limit of 0 or less lists everything.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1 // SQLite: negative LIMIT means no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, graph_fp, steps, sweeps
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var sum RunSummary
		var createdAt string
		if err := rows.Scan(&sum.ID, &createdAt, &sum.GraphFP, &sum.Steps, &sum.Sweeps); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("list runs: parse created_at: %w", err)
		}
		sum.CreatedAt = t
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

// LastRun retrieves the most recently created run with its results.
// Returns sql.ErrNoRows if the journal is empty.
func (s *Store) LastRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`)
	var id string
	if err := row.Scan(&id); err != nil {
		return Run{}, fmt.Errorf("last run: %w", err)
	}
	return s.GetRun(ctx, id)
}
