package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"aitrader/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// SweepRegistry records sweep jobs, their terminal results, and status
// transitions in SQLite. One registry serves one sweep run; writes are
// serialized through database/sql, so dispatcher workers can share it.
type SweepRegistry struct {
	db *sql.DB
}

const sweepSchema = `
CREATE TABLE IF NOT EXISTS sweep_jobs (
	job_id     TEXT PRIMARY KEY,
	idx        INTEGER NOT NULL,
	strategy   TEXT NOT NULL,
	symbol     TEXT NOT NULL,
	params     TEXT NOT NULL,
	status     TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sweep_results (
	job_id       TEXT PRIMARY KEY,
	status       TEXT NOT NULL,
	metrics      TEXT,
	artifact_uri TEXT,
	error        TEXT,
	attempts     INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sweep_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id     TEXT NOT NULL,
	from_state TEXT NOT NULL,
	to_state   TEXT NOT NULL,
	at         TEXT NOT NULL
);
`

// NewSweepRegistry opens (or creates) a SQLite database at dbPath and ensures
// the sweep tables exist.
func NewSweepRegistry(dbPath string) (*SweepRegistry, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sweepSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sweep schema: %w", err)
	}
	return &SweepRegistry{db: db}, nil
}

// Close closes the underlying database connection.
func (r *SweepRegistry) Close() error {
	return r.db.Close()
}

// RegisterJob inserts (or replaces) a job row in the queued state.
func (r *SweepRegistry) RegisterJob(ctx context.Context, job domain.SweepJob) error {
	params, err := json.Marshal(job.Params)
	if err != nil {
		return fmt.Errorf("encoding params for %s: %w", job.ID, err)
	}
	status := job.Status
	if status == "" {
		status = domain.JobQueued
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sweep_jobs (job_id, idx, strategy, symbol, params, status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Index, job.Strategy, job.Symbol, string(params), string(status), now())
	return err
}

// UpdateStatus records a status transition. Transitions must move forward
// (queued -> running -> terminal); regressions are rejected, keeping the
// recorded lifecycle monotonic even when a retry races a cancellation.
func (r *SweepRegistry) UpdateStatus(ctx context.Context, jobID string, to domain.JobStatus) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var cur string
	if err := tx.QueryRowContext(ctx,
		`SELECT status FROM sweep_jobs WHERE job_id = ?`, jobID).Scan(&cur); err != nil {
		return fmt.Errorf("job %s: %w", jobID, err)
	}
	from := domain.JobStatus(cur)
	if !from.CanTransition(to) {
		return fmt.Errorf("job %s: illegal status transition %s -> %s", jobID, from, to)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE sweep_jobs SET status = ?, updated_at = ? WHERE job_id = ?`,
		string(to), now(), jobID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sweep_events (job_id, from_state, to_state, at) VALUES (?, ?, ?, ?)`,
		jobID, string(from), string(to), now()); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveResult upserts the terminal record for a job. Re-saving the same job is
// an overwrite, which keeps result ingestion idempotent under retries.
func (r *SweepRegistry) SaveResult(ctx context.Context, res domain.SweepResult) error {
	var metrics []byte
	if res.Metrics != nil {
		var err error
		metrics, err = json.Marshal(res.Metrics)
		if err != nil {
			return fmt.Errorf("encoding metrics for %s: %w", res.JobID, err)
		}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sweep_results (job_id, status, metrics, artifact_uri, error, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.JobID, string(res.Status), nullable(metrics), res.ArtifactURI, res.Error, res.Attempts, now())
	return err
}

// GetResult loads one job's terminal record.
func (r *SweepRegistry) GetResult(ctx context.Context, jobID string) (*domain.SweepResult, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT job_id, status, metrics, artifact_uri, error, attempts
		FROM sweep_results WHERE job_id = ?`, jobID)
	return scanResult(row)
}

// Results returns every terminal record, ordered by job ID.
func (r *SweepRegistry) Results(ctx context.Context) ([]domain.SweepResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT job_id, status, metrics, artifact_uri, error, attempts
		FROM sweep_results ORDER BY job_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SweepResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// Events returns the recorded status transitions for a job, oldest first.
func (r *SweepRegistry) Events(ctx context.Context, jobID string) ([][2]domain.JobStatus, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT from_state, to_state FROM sweep_events WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][2]domain.JobStatus
	for rows.Next() {
		var from, to string
		if err := rows.Scan(&from, &to); err != nil {
			return nil, err
		}
		out = append(out, [2]domain.JobStatus{domain.JobStatus(from), domain.JobStatus(to)})
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*domain.SweepResult, error) {
	var res domain.SweepResult
	var status string
	var metrics, artifactURI, errMsg sql.NullString
	if err := row.Scan(&res.JobID, &status, &metrics, &artifactURI, &errMsg, &res.Attempts); err != nil {
		return nil, err
	}
	res.Status = domain.JobStatus(status)
	res.ArtifactURI = artifactURI.String
	res.Error = errMsg.String
	if metrics.Valid && metrics.String != "" {
		var m domain.MetricsSummary
		if err := json.Unmarshal([]byte(metrics.String), &m); err != nil {
			return nil, fmt.Errorf("decoding metrics for %s: %w", res.JobID, err)
		}
		res.Metrics = &m
	}
	return &res, nil
}

func nullable(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
