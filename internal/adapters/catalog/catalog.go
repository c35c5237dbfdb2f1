// Package catalog records pipeline runs and the artifacts they write in a
// SQLite database.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

const (
	timeLayout = time.RFC3339Nano
	driverName = "sqlite"
)

var pragmas = []string{
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	mode        TEXT NOT NULL,
	settings    TEXT NOT NULL,
	status      TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	rows_in     INTEGER NOT NULL DEFAULT 0,
	rows_out    INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS artifacts (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id   TEXT NOT NULL REFERENCES runs(id),
	variant  TEXT NOT NULL,
	subject  TEXT NOT NULL,
	joint    TEXT NOT NULL,
	label    TEXT NOT NULL,
	rows     INTEGER NOT NULL,
	cols     INTEGER NOT NULL,
	path     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS artifacts_run ON artifacts(run_id);
`

// Run is one pipeline invocation.
type Run struct {
	ID         string
	Mode       string
	Settings   string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
	RowsIn     int
	RowsOut    int
}

// Artifact is one persisted stride array.
type Artifact struct {
	RunID   string
	Variant string
	Subject string
	Joint   string
	Label   string
	Rows    int
	Cols    int
	Path    string
}

// Catalog wraps the database handle.
type Catalog struct {
	mu     sync.Mutex
	db     *sql.DB
	now    func() time.Time
	closed bool
}

// Open creates or opens the catalog at path and applies the schema.
func Open(ctx context.Context, path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range append(pragmas, schema) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init catalog %s: %w", path, err)
		}
	}
	return &Catalog{db: db, now: time.Now}, nil
}

// BeginRun inserts a running run with a fresh id. settings is stored as JSON.
func (c *Catalog) BeginRun(ctx context.Context, mode string, settings any) (Run, error) {
	if err := c.check(); err != nil {
		return Run{}, err
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return Run{}, fmt.Errorf("encode settings: %w", err)
	}
	run := Run{
		ID:        uuid.NewString(),
		Mode:      mode,
		Settings:  string(raw),
		Status:    StatusRunning,
		StartedAt: c.now().UTC(),
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO runs (id, mode, settings, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Mode, run.Settings, run.Status, run.StartedAt.Format(timeLayout))
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordArtifact appends one artifact row.
func (c *Catalog) RecordArtifact(ctx context.Context, a Artifact) error {
	if err := c.check(); err != nil {
		return err
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO artifacts (run_id, variant, subject, joint, label, rows, cols, path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.RunID, a.Variant, a.Subject, a.Joint, a.Label, a.Rows, a.Cols, a.Path)
	if err != nil {
		return fmt.Errorf("insert artifact %s: %w", a.Path, err)
	}
	return nil
}

// FinishRun closes a run with its final status and corpus sizes.
func (c *Catalog) FinishRun(ctx context.Context, id, status string, rowsIn, rowsOut int) error {
	if err := c.check(); err != nil {
		return err
	}
	res, err := c.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, rows_in = ?, rows_out = ? WHERE id = ?`,
		status, c.now().UTC().Format(timeLayout), rowsIn, rowsOut, id)
	if err != nil {
		return fmt.Errorf("update run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// GetRun loads one run.
func (c *Catalog) GetRun(ctx context.Context, id string) (Run, error) {
	if err := c.check(); err != nil {
		return Run{}, err
	}
	var (
		r        Run
		started  string
		finished sql.NullString
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT id, mode, settings, status, started_at, finished_at, rows_in, rows_out FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &r.Mode, &r.Settings, &r.Status, &started, &finished, &r.RowsIn, &r.RowsOut)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return Run{}, fmt.Errorf("select run %s: %w", id, err)
	}
	if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Run{}, fmt.Errorf("run %s started_at: %w", id, err)
	}
	if finished.Valid {
		if r.FinishedAt, err = time.Parse(timeLayout, finished.String); err != nil {
			return Run{}, fmt.Errorf("run %s finished_at: %w", id, err)
		}
	}
	return r, nil
}

// Artifacts lists the artifacts of a run in insertion order.
func (c *Catalog) Artifacts(ctx context.Context, runID string) ([]Artifact, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT run_id, variant, subject, joint, label, rows, cols, path
		 FROM artifacts WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("select artifacts %s: %w", runID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []Artifact
	for rows.Next() {
		var a Artifact
		if err := rows.Scan(&a.RunID, &a.Variant, &a.Subject, &a.Joint, &a.Label, &a.Rows, &a.Cols, &a.Path); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Close releases the database handle. Subsequent calls return ErrClosed.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	return c.db.Close()
}

func (c *Catalog) check() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}
