package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"insurance-data-pipeline/internal/model"
)

// ErrJobNotFound is returned when a job ID is unknown.
var ErrJobNotFound = errors.New("job not found")

// Store keeps job history in sqlite.
type Store struct {
	db *sql.DB
}

// Open connects to dbPath and creates the tables if they do not exist.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers anyway; one connection also keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	jobTable := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		kind TEXT,
		source TEXT,
		status TEXT,
		stats TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);
	`
	errorTable := `
	CREATE TABLE IF NOT EXISTS job_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT,
		error_message TEXT,
		created_at DATETIME
	);
	`

	if _, err := db.Exec(jobTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create jobs table: %w", err)
	}
	if _, err := db.Exec(errorTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create job_errors table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveJob stores a new pipeline job
func (s *Store) SaveJob(ctx context.Context, job model.Job) error {
	now := time.Now().UTC()
	if job.Status == "" {
		job.Status = model.JobPending
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, kind, source, status, stats, created_at, updated_at) VALUES (?, ?, ?, ?, NULL, ?, ?)`,
		job.ID, job.Kind, job.Source, job.Status, now, now)
	return err
}

// UpdateJobStatus updates job status
func (s *Store) UpdateJobStatus(ctx context.Context, jobID, status string) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?`, status, now, jobID)
	if err != nil {
		return err
	}
	return requireRow(res, jobID)
}

// SaveJobStats attaches the run summary to a job.
func (s *Store) SaveJobStats(ctx context.Context, jobID string, stats model.Summary) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `UPDATE jobs SET stats = ?, updated_at = ? WHERE id = ?`, string(statsJSON), now, jobID)
	if err != nil {
		return err
	}
	return requireRow(res, jobID)
}

// SaveJobError records an error for a job
func (s *Store) SaveJobError(ctx context.Context, jobID string, err error) error {
	if err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := s.db.ExecContext(ctx, `INSERT INTO job_errors (job_id, error_message, created_at) VALUES (?, ?, ?)`,
		jobID, err.Error(), now)
	return e
}

// ListJobs returns all jobs, newest first
func (s *Store) ListJobs(ctx context.Context) ([]model.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, source, status, stats, created_at, updated_at FROM jobs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]model.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// GetJob fetches one job with its stats
func (s *Store) GetJob(ctx context.Context, jobID string) (model.Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, source, status, stats, created_at, updated_at FROM jobs WHERE id = ?`, jobID)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Job{}, fmt.Errorf("%s: %w", jobID, ErrJobNotFound)
	}
	return job, err
}

// GetJobErrors returns the errors recorded for a job in insertion order
func (s *Store) GetJobErrors(ctx context.Context, jobID string) ([]model.JobError, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_id, error_message, created_at FROM job_errors WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	errs := make([]model.JobError, 0)
	for rows.Next() {
		var e model.JobError
		if err := rows.Scan(&e.ID, &e.JobID, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		errs = append(errs, e)
	}
	return errs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (model.Job, error) {
	var job model.Job
	var stats sql.NullString
	if err := row.Scan(&job.ID, &job.Kind, &job.Source, &job.Status, &stats, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return model.Job{}, err
	}
	if stats.Valid && stats.String != "" {
		var summary model.Summary
		if err := json.Unmarshal([]byte(stats.String), &summary); err != nil {
			return model.Job{}, fmt.Errorf("failed to decode stats for job %s: %w", job.ID, err)
		}
		job.Stats = &summary
	}
	return job, nil
}

func requireRow(res sql.Result, jobID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", jobID, ErrJobNotFound)
	}
	return nil
}
