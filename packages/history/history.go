// Package history keeps a SQLite record of suite runs, so failures and their
// screenshots can be looked up after the console output is gone.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/webspec/packages/core/runner"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	file        TEXT NOT NULL,
	name        TEXT NOT NULL,
	url         TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	passed      INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	skipped     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS checks (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	name        TEXT NOT NULL,
	selector    TEXT NOT NULL,
	assertion   TEXT NOT NULL,
	args        TEXT NOT NULL,
	line        INTEGER NOT NULL,
	status      TEXT NOT NULL,
	message     TEXT NOT NULL,
	diff        TEXT NOT NULL,
	screenshot  TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS checks_status ON checks(status);
`

// Check statuses.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// Store is a run history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path. The sqlite: and
// sqlite:// prefixes are accepted.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "sqlite://")
	path = strings.TrimPrefix(path, "sqlite:")
	if path == "" {
		return nil, errors.New("history: empty database path")
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func status(cr *runner.CheckResult) string {
	switch {
	case cr.Skipped:
		return StatusSkipped
	case cr.Passed:
		return StatusPassed
	case cr.Error != nil:
		return StatusError
	default:
		return StatusFailed
	}
}

// Record stores a run and its check results.
func (s *Store) Record(ctx context.Context, run *runner.RunResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	started := run.Started
	if started.IsZero() {
		started = time.Now()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, file, name, url, started_at, duration_ms, passed, failed, skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.File, run.Name, run.URL, started.UTC().Format(time.RFC3339Nano),
		run.Duration.Milliseconds(), run.Passed, run.Failed, run.Skipped)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO checks (run_id, position, name, selector, assertion, args, line, status, message, diff, screenshot, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i, cr := range run.Results {
		args, err := json.Marshal(cr.Args)
		if err != nil {
			return fmt.Errorf("encode args: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			run.ID, i, cr.Name, cr.Selector, cr.Assertion, string(args), cr.Line, status(cr),
			cr.Message, cr.Diff, cr.Screenshot, cr.Duration.Milliseconds())
		if err != nil {
			return fmt.Errorf("insert check %q: %w", cr.Name, err)
		}
	}

	return tx.Commit()
}

// Run summarizes one recorded run.
type Run struct {
	ID       string
	File     string
	Name     string
	URL      string
	Started  time.Time
	Duration time.Duration
	Passed   int
	Failed   int
	Skipped  int
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file, name, url, started_at, duration_ms, passed, failed, skipped
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limitOrAll(limit))
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			started    string
			durationMs int64
		)
		if err := rows.Scan(&r.ID, &r.File, &r.Name, &r.URL, &started, &durationMs, &r.Passed, &r.Failed, &r.Skipped); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r.Started, _ = time.Parse(time.RFC3339Nano, started)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

// Failure is a recorded failing check.
type Failure struct {
	RunID      string
	File       string
	Started    time.Time
	Check      string
	Selector   string
	Assertion  string
	Args       []string
	Line       int
	Status     string
	Message    string
	Diff       string
	Screenshot string
}

// Failures returns the most recent failed or errored checks, newest first.
// A limit of zero or less returns all of them.
func (s *Store) Failures(ctx context.Context, limit int) ([]Failure, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.file, r.started_at, c.name, c.selector, c.assertion, c.args, c.line,
		        c.status, c.message, c.diff, c.screenshot
		 FROM checks c JOIN runs r ON r.id = c.run_id
		 WHERE c.status IN (?, ?)
		 ORDER BY r.started_at DESC, c.position ASC
		 LIMIT ?`, StatusFailed, StatusError, limitOrAll(limit))
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var failures []Failure
	for rows.Next() {
		var (
			f       Failure
			started string
			args    string
		)
		if err := rows.Scan(&f.RunID, &f.File, &started, &f.Check, &f.Selector, &f.Assertion, &args, &f.Line,
			&f.Status, &f.Message, &f.Diff, &f.Screenshot); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		f.Started, _ = time.Parse(time.RFC3339Nano, started)
		if err := json.Unmarshal([]byte(args), &f.Args); err != nil {
			return nil, fmt.Errorf("decode args: %w", err)
		}
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return failures, nil
}

// limitOrAll maps a non-positive limit to SQLite's "no limit".
func limitOrAll(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
