// Package sqlite implements the check and job stores on SQLite. It is the
// default driver for local use and backs the in-memory test stores.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"podsafe/internal/models"
	"podsafe/internal/store"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

const schema = `
CREATE TABLE IF NOT EXISTS checks (
	id          TEXT PRIMARY KEY,
	description TEXT NOT NULL,
	keywords    TEXT NOT NULL DEFAULT '[]',
	is_for_kids BOOLEAN NOT NULL DEFAULT 0,
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	provider    TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS checks_created_at_idx ON checks (created_at DESC);

CREATE TABLE IF NOT EXISTS background_jobs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id     TEXT NOT NULL UNIQUE,
	task_type  TEXT NOT NULL,
	payload    TEXT NOT NULL DEFAULT '{}',
	queue      TEXT NOT NULL,
	status     TEXT NOT NULL,
	check_id   TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);`

// Store implements store.Store on a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dsn and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("database DSN cannot be empty")
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}
	// SQLite serialises writers; a single connection also keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// --- Check Store ---

const checkColumns = `id, description, keywords, is_for_kids, status, error, provider, created_at`

func (s *Store) RecordCheck(ctx context.Context, check *models.Check) error {
	keywords := check.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	encoded, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("failed to encode keywords: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO checks (`+checkColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		check.ID.String(), check.Description, string(encoded), check.IsForKids,
		check.Status, check.Error, check.Provider, check.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record check %s: %w", check.ID, err)
	}
	return nil
}

func (s *Store) GetCheck(ctx context.Context, id uuid.UUID) (*models.Check, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+checkColumns+` FROM checks WHERE id = ?`, id.String())
	check, err := scanCheck(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get check %s: %w", id, err)
	}
	return check, nil
}

func (s *Store) ListChecks(ctx context.Context, limit, offset int) ([]*models.Check, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+checkColumns+` FROM checks ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}
	defer rows.Close()

	checks := []*models.Check{}
	for rows.Next() {
		check, err := scanCheck(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check row: %w", err)
		}
		checks = append(checks, check)
	}
	return checks, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCheck(row scanner) (*models.Check, error) {
	c := &models.Check{}
	var id, keywords string
	if err := row.Scan(&id, &c.Description, &keywords, &c.IsForKids, &c.Status, &c.Error, &c.Provider, &c.CreatedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid check id %q: %w", id, err)
	}
	c.ID = parsed
	if err := json.Unmarshal([]byte(keywords), &c.Keywords); err != nil {
		return nil, fmt.Errorf("invalid keywords for check %s: %w", id, err)
	}
	return c, nil
}

// --- Job Store ---

func (s *Store) RecordJobEnqueue(ctx context.Context, params store.JobRecordParams) error {
	payload := "{}"
	if params.Payload != nil {
		payload = string(params.Payload)
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO background_jobs (job_id, task_type, payload, queue, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (job_id) DO NOTHING`,
		params.JobID.String(), params.TaskType, payload, params.Queue, params.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to record job enqueue event for JobID %s: %w", params.JobID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		log.Debugf("Job %s already recorded, skipping insertion.", params.JobID)
	}
	return nil
}

func (s *Store) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string, checkID *uuid.UUID) error {
	var linked sql.NullString
	if checkID != nil {
		linked = sql.NullString{String: checkID.String(), Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE background_jobs SET status = ?, check_id = COALESCE(?, check_id), updated_at = ? WHERE job_id = ?`,
		status, linked, time.Now().UTC(), jobID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update job status for job %s: %w", jobID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetJob(ctx context.Context, jobID uuid.UUID) (*models.BackgroundJob, error) {
	job := &models.BackgroundJob{}
	var id, payload string
	var checkID sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, job_id, task_type, payload, queue, status, check_id, created_at, updated_at
		FROM background_jobs WHERE job_id = ?`, jobID.String(),
	).Scan(&job.ID, &id, &job.TaskType, &payload, &job.Queue, &job.Status, &checkID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job %s: %w", jobID, err)
	}
	if job.JobID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid job id %q: %w", id, err)
	}
	job.Payload = json.RawMessage(payload)
	if checkID.Valid {
		linked, err := uuid.Parse(checkID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid check id %q: %w", checkID.String, err)
		}
		job.CheckID = &linked
	}
	return job, nil
}

var _ store.Store = (*Store)(nil)
