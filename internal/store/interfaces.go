package store

import (
	"context"

	"podsafe/internal/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// --- Job Client ---

type JobClient interface {
	// Enqueue records the job as enqueued, then puts task on queue.
	Enqueue(ctx context.Context, task *asynq.Task, queue string, opts ...asynq.Option) (*asynq.TaskInfo, error)
	EnqueueCheck(ctx context.Context, description string) (*asynq.TaskInfo, error)
	Close() error
}

// --- Check Store ---

type CheckStore interface {
	RecordCheck(ctx context.Context, check *models.Check) error
	GetCheck(ctx context.Context, id uuid.UUID) (*models.Check, error)
	ListChecks(ctx context.Context, limit, offset int) ([]*models.Check, error)

	Ping(ctx context.Context) error
	Close() error
}

// --- Job Store ---

// JobRecordParams holds parameters for recording a job event.
type JobRecordParams struct {
	JobID    uuid.UUID
	TaskType string
	Payload  []byte
	Queue    string
	Status   string
}

type JobStore interface {
	RecordJobEnqueue(ctx context.Context, params JobRecordParams) error
	// UpdateJobStatus sets the job status and, when checkID is non-nil, links the recorded check.
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string, checkID *uuid.UUID) error
	GetJob(ctx context.Context, jobID uuid.UUID) (*models.BackgroundJob, error)
}

// Store is the full persistence surface; both drivers implement it.
type Store interface {
	CheckStore
	JobStore
}
