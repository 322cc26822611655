package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Defines constants for task types used in Asynq.
const (
	// TypeCheckClassify runs a podcast description through the check pipeline.
	TypeCheckClassify = "check:classify"

	// QueueChecks is the queue check tasks are placed on.
	QueueChecks = "checks"
)

// CheckPayload is the JSON payload of a TypeCheckClassify task.
type CheckPayload struct {
	Description string `json:"description"`
}

// NewCheckTask builds a TypeCheckClassify task for description.
func NewCheckTask(description string) (*asynq.Task, error) {
	payload, err := json.Marshal(CheckPayload{Description: description})
	if err != nil {
		return nil, fmt.Errorf("encode check payload: %w", err)
	}
	return asynq.NewTask(TypeCheckClassify, payload), nil
}

// ParseCheckPayload decodes the payload of a TypeCheckClassify task.
func ParseCheckPayload(task *asynq.Task) (CheckPayload, error) {
	var p CheckPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("decode check payload: %w", err)
	}
	return p, nil
}
