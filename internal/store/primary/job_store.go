package primary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"podsafe/internal/models"
	"podsafe/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	log "github.com/sirupsen/logrus"
)

// --- Job Store Implementation ---

// RecordJobEnqueue inserts a record into the background_jobs table.
func (s *StoreImpl) RecordJobEnqueue(ctx context.Context, params store.JobRecordParams) error {
	query := `
		INSERT INTO background_jobs (job_id, task_type, payload, queue, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (job_id) DO NOTHING
		RETURNING id`

	payloadJSON := json.RawMessage("{}")
	if params.Payload != nil {
		payloadJSON = json.RawMessage(params.Payload)
	}

	var insertedID int64
	err := s.db.QueryRow(ctx, query,
		params.JobID, params.TaskType, payloadJSON, params.Queue, params.Status, time.Now(),
	).Scan(&insertedID)
	if err != nil {
		// ON CONFLICT DO NOTHING returns no row when the job is already recorded.
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debugf("Job %s already recorded, skipping insertion.", params.JobID)
			return nil
		}
		return fmt.Errorf("failed to record job enqueue event for JobID %s: %w", params.JobID, err)
	}

	log.Debugf("Recorded job enqueue event for JobID %s with DB ID %d", params.JobID, insertedID)
	return nil
}

// UpdateJobStatus updates the status of a job given its Asynq Task UUID.
func (s *StoreImpl) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string, checkID *uuid.UUID) error {
	var linked pgtype.UUID
	if checkID != nil {
		linked = pgtype.UUID{Bytes: *checkID, Valid: true}
	}
	cmdTag, err := s.db.Exec(ctx,
		`UPDATE background_jobs SET status = $1, check_id = COALESCE($2, check_id), updated_at = $3 WHERE job_id = $4`,
		status, linked, time.Now(), jobID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job status for job %s: %w", jobID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *StoreImpl) GetJob(ctx context.Context, jobID uuid.UUID) (*models.BackgroundJob, error) {
	job := &models.BackgroundJob{}
	var checkID pgtype.UUID
	err := s.db.QueryRow(ctx, `
		SELECT id, job_id, task_type, payload, queue, status, check_id, created_at, updated_at
		FROM background_jobs WHERE job_id = $1`, jobID,
	).Scan(&job.ID, &job.JobID, &job.TaskType, &job.Payload, &job.Queue, &job.Status, &checkID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job %s: %w", jobID, err)
	}
	if checkID.Valid {
		id := uuid.UUID(checkID.Bytes)
		job.CheckID = &id
	}
	return job, nil
}

var _ store.JobStore = (*StoreImpl)(nil)
