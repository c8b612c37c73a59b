// Package store keeps a history of triage runs in SQLite.
//
// The default DSN is an in-memory database, so history lasts as long as the
// process unless a file path is configured.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/spetersoncode/triage/workflow"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("store: run not found")

// RunRecord is one finished run.
type RunRecord struct {
	ID           string          `json:"id" yaml:"id"`
	WorkflowID   string          `json:"workflowId" yaml:"workflowId"`
	Subject      string          `json:"subject" yaml:"subject"`
	Status       string          `json:"status" yaml:"status"`
	Input        json.RawMessage `json:"input,omitempty" yaml:"-"`
	Output       json.RawMessage `json:"output,omitempty" yaml:"-"`
	Error        string          `json:"error,omitempty" yaml:"error,omitempty"`
	Model        string          `json:"model,omitempty" yaml:"model,omitempty"`
	InputTokens  int             `json:"inputTokens" yaml:"inputTokens"`
	OutputTokens int             `json:"outputTokens" yaml:"outputTokens"`
	CostUSD      float64         `json:"costUsd" yaml:"costUsd"`
	StartedAt    time.Time       `json:"startedAt" yaml:"startedAt"`
	FinishedAt   time.Time       `json:"finishedAt" yaml:"finishedAt"`
}

// Duration returns how long the run took.
func (r RunRecord) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// FromResult builds a record from a workflow result. subject names what the
// run was about, e.g. "owner/repo#42".
func FromResult(res *workflow.Result, subject string, input any) (RunRecord, error) {
	rec := RunRecord{
		ID:         res.RunID,
		WorkflowID: res.WorkflowID,
		Subject:    subject,
		Status:     res.Status.String(),
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}

	var err error
	if rec.Input, err = encode(input); err != nil {
		return RunRecord{}, fmt.Errorf("store: encode input: %w", err)
	}
	if rec.Output, err = encode(res.Output); err != nil {
		return RunRecord{}, fmt.Errorf("store: encode output: %w", err)
	}
	return rec, nil
}

func encode(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at dsn using the pure-Go
// modernc.org/sqlite driver.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dsn, err)
	}
	if dsn == MemoryDSN || strings.Contains(dsn, "mode=memory") {
		// each connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	s, err := New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New initializes the schema in db and returns a Store.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			workflow_id TEXT NOT NULL,
			subject TEXT NOT NULL,
			status TEXT NOT NULL,
			input BLOB,
			output BLOB,
			error TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			cost_usd REAL NOT NULL DEFAULT 0,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at);`,
	)
	return err
}

// Save inserts or replaces a run record.
func (s *Store) Save(ctx context.Context, rec RunRecord) error {
	if rec.ID == "" {
		return errors.New("store: run id is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, workflow_id, subject, status, input, output, error, model,
			input_tokens, output_tokens, cost_usd, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.WorkflowID,
		rec.Subject,
		rec.Status,
		[]byte(rec.Input),
		[]byte(rec.Output),
		rec.Error,
		rec.Model,
		rec.InputTokens,
		rec.OutputTokens,
		rec.CostUSD,
		rec.StartedAt.UnixNano(),
		rec.FinishedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("store: save run %s: %w", rec.ID, err)
	}
	return nil
}

const selectColumns = `SELECT id, workflow_id, subject, status, input, output, error, model,
	input_tokens, output_tokens, cost_usd, started_at, finished_at FROM runs`

// Get returns the run with the given ID.
func (s *Store) Get(ctx context.Context, id string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, ErrRunNotFound
	}
	return rec, err
}

// ListOptions filters List.
type ListOptions struct {
	// Limit caps the number of records; zero means 20.
	Limit int
	// Subject restricts results to one subject when set.
	Subject string
	// Status restricts results to one status when set.
	Status string
}

// List returns runs, most recent first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]RunRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	query := selectColumns
	var where []string
	var args []any
	if opts.Subject != "" {
		where = append(where, "subject = ?")
		args = append(args, opts.Subject)
	}
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, opts.Status)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC, id LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (RunRecord, error) {
	var rec RunRecord
	var input, output []byte
	var started, finished int64
	err := sc.Scan(
		&rec.ID,
		&rec.WorkflowID,
		&rec.Subject,
		&rec.Status,
		&input,
		&output,
		&rec.Error,
		&rec.Model,
		&rec.InputTokens,
		&rec.OutputTokens,
		&rec.CostUSD,
		&started,
		&finished,
	)
	if err != nil {
		return RunRecord{}, err
	}
	if len(input) > 0 {
		rec.Input = json.RawMessage(input)
	}
	if len(output) > 0 {
		rec.Output = json.RawMessage(output)
	}
	rec.StartedAt = time.Unix(0, started)
	rec.FinishedAt = time.Unix(0, finished)
	return rec, nil
}
