package worker

import (
	"context"
	"errors"
	"fmt"

	"podsafe/internal/models"
	"podsafe/internal/services"
	"podsafe/internal/store"
	"podsafe/internal/tasks"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
)

// CheckDeps holds what the check task handler needs.
type CheckDeps struct {
	Checker  services.Checker
	JobStore store.JobStore // optional
}

// RegisterHandlers wires every task type this worker serves into mux.
func RegisterHandlers(mux *asynq.ServeMux, deps CheckDeps) {
	log.Infof("Registering handler for %s", tasks.TypeCheckClassify)
	mux.HandleFunc(tasks.TypeCheckClassify, HandleCheckTask(deps))
}

// HandleCheckTask returns the asynq handler for TypeCheckClassify tasks.
// Classification failures and empty descriptions are terminal and skip retry;
// the classifier contract has no retries and the queue does not add any.
func HandleCheckTask(deps CheckDeps) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		taskID, _ := asynq.GetTaskID(ctx)
		return processCheck(ctx, deps, taskID, t)
	}
}

func processCheck(ctx context.Context, deps CheckDeps, taskID string, t *asynq.Task) error {
	logger := log.WithFields(log.Fields{"task_id": taskID, "type": t.Type()})

	payload, err := tasks.ParseCheckPayload(t)
	if err != nil {
		logger.WithError(err).Error("Invalid check payload")
		updateJob(ctx, deps.JobStore, taskID, models.JobStatusFailed, nil)
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	updateJob(ctx, deps.JobStore, taskID, models.JobStatusRunning, nil)

	check, err := deps.Checker.Check(ctx, services.CheckParams{Input: payload.Description, Raw: true})
	var checkID *uuid.UUID
	if check != nil {
		id := check.ID
		checkID = &id
	}

	if err != nil {
		// An empty description is a completed job with an empty_input check, not a failure.
		if errors.Is(err, models.ErrEmptyInput) {
			logger.Info("Check task finished with no keywords")
			updateJob(ctx, deps.JobStore, taskID, models.JobStatusCompleted, checkID)
			return nil
		}
		logger.WithError(err).Warn("Check task failed")
		updateJob(ctx, deps.JobStore, taskID, models.JobStatusFailed, checkID)
		return fmt.Errorf("check task %s: %w: %w", taskID, err, asynq.SkipRetry)
	}

	logger.WithFields(log.Fields{"check_id": check.ID, "is_for_kids": check.IsForKids}).Info("Check task completed")
	updateJob(ctx, deps.JobStore, taskID, models.JobStatusCompleted, checkID)
	return nil
}

func updateJob(ctx context.Context, js store.JobStore, taskID, status string, checkID *uuid.UUID) {
	if js == nil || taskID == "" {
		return
	}
	jobID, err := uuid.Parse(taskID)
	if err != nil {
		log.Warnf("Task ID %q is not a job UUID, skipping status update", taskID)
		return
	}
	if err := js.UpdateJobStatus(context.WithoutCancel(ctx), jobID, status, checkID); err != nil {
		log.WithError(err).Warnf("Failed to update job %s to %s", jobID, status)
	}
}
