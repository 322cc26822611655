package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Check is the recorded outcome of running one podcast description through
// keyword extraction and classification.
type Check struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Description string    `db:"description" json:"description"`
	Keywords    []string  `db:"keywords" json:"keywords"`
	IsForKids   bool      `db:"is_for_kids" json:"is_for_kids"`
	Status      string    `db:"status" json:"status"`
	Error       string    `db:"error" json:"error,omitempty"`
	Provider    string    `db:"provider" json:"provider"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Succeeded reports whether the classifier produced a verdict for this check.
func (c *Check) Succeeded() bool {
	return c.Status == CheckStatusSucceeded
}

// Verdict returns the badge label shown for a successful check.
func (c *Check) Verdict() string {
	if c.IsForKids {
		return "Kid-Friendly"
	}
	return "Not for Kids"
}

// Recommendation returns the guidance text shown alongside the verdict.
func (c *Check) Recommendation() string {
	if c.IsForKids {
		return "This podcast appears to contain positive, educational, and age-appropriate content suitable for children."
	}
	return "This podcast may contain content that is not appropriate for children. Please review it yourself before sharing with kids."
}

// BackgroundJob mirrors the background_jobs table schema.
type BackgroundJob struct {
	ID        int64           `db:"id" json:"-"`
	JobID     uuid.UUID       `db:"job_id" json:"job_id"` // Asynq Task ID
	TaskType  string          `db:"task_type" json:"task_type"`
	Payload   json.RawMessage `db:"payload" json:"-"`
	Queue     string          `db:"queue" json:"queue"`
	Status    string          `db:"status" json:"status"`
	CheckID   *uuid.UUID      `db:"check_id" json:"check_id,omitempty"` // Set once the worker has recorded a check
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}
