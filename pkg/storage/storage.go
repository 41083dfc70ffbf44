// Package storage keeps a small sqlite ledger of extraction runs, so
// operators can see which accounts produced artifacts on which days
// without digging through log output.
package storage

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  id          INTEGER PRIMARY KEY,
  target_date TEXT NOT NULL,
  started_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  finished_at DATETIME,
  artifacts   INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS outcomes (
  id          INTEGER PRIMARY KEY,
  run_id      INTEGER NOT NULL REFERENCES runs(id),
  account     TEXT NOT NULL,
  dealer      TEXT NOT NULL,
  mode        TEXT NOT NULL,
  status      TEXT NOT NULL CHECK (status IN ('extracted','empty','failed')),
  artifact    TEXT,
  reason      TEXT,
  occurred_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
CREATE INDEX IF NOT EXISTS idx_runs_date ON runs(target_date);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// BeginRun records the start of an extraction run and returns its id.
func (d *DB) BeginRun(ctx context.Context, targetDate string) (int64, error) {
	res, err := d.sql.ExecContext(ctx,
		`INSERT INTO runs(target_date, started_at) VALUES(?, CURRENT_TIMESTAMP)`, targetDate)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FinishRun stamps the run's end time and final artifact count.
func (d *DB) FinishRun(ctx context.Context, runID int64, artifacts int) error {
	_, err := d.sql.ExecContext(ctx,
		`UPDATE runs SET finished_at = CURRENT_TIMESTAMP, artifacts = ? WHERE id = ?`, artifacts, runID)
	return err
}

// RecordOutcome stores one (account, mode) result.
func (d *DB) RecordOutcome(ctx context.Context, o Outcome) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO outcomes(run_id, account, dealer, mode, status, artifact, reason) VALUES(?,?,?,?,?,?,?)`,
		o.RunID, o.Account, o.Dealer, o.Mode, o.Status, nullIfEmpty(o.Artifact), nullIfEmpty(o.Reason))
	return err
}

// ListRuns returns the most recent runs, newest first.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, target_date, started_at, COALESCE(finished_at, started_at), artifacts
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.TargetDate, &r.StartedAt, &r.FinishedAt, &r.Artifacts); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListOutcomes returns every outcome of a run in insertion order.
func (d *DB) ListOutcomes(ctx context.Context, runID int64) ([]Outcome, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT run_id, account, dealer, mode, status, COALESCE(artifact, ''), COALESCE(reason, ''), occurred_at
		 FROM outcomes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []Outcome
	for rows.Next() {
		var o Outcome
		if err := rows.Scan(&o.RunID, &o.Account, &o.Dealer, &o.Mode, &o.Status, &o.Artifact, &o.Reason, &o.OccurredAt); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
