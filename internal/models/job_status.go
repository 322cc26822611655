package models

// Check status constants
const (
	CheckStatusSucceeded  = "succeeded"
	CheckStatusFailed     = "failed"
	CheckStatusEmptyInput = "empty_input"
)

// Job status constants
const (
	JobStatusEnqueued  = "enqueued"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)
