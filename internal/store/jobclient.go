package store

import (
	"context"
	"fmt"

	"podsafe/internal/models"
	"podsafe/internal/tasks"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
)

// AsynqJobClient enqueues check tasks and records them to the JobStore.
type AsynqJobClient struct {
	client   *asynq.Client
	jobStore JobStore
}

// NewAsynqJobClient connects to Redis with opt.
func NewAsynqJobClient(opt asynq.RedisClientOpt, js JobStore) (*AsynqJobClient, error) {
	if js == nil {
		return nil, fmt.Errorf("JobStore cannot be nil for AsynqJobClient")
	}
	return &AsynqJobClient{client: asynq.NewClient(opt), jobStore: js}, nil
}

func (jc *AsynqJobClient) Close() error {
	return jc.client.Close()
}

// Enqueue records the job and then enqueues task on queue. The job row exists
// before any worker can pick the task up, so status updates always find it.
// The task ID is the job UUID; a failed enqueue marks the job failed.
func (jc *AsynqJobClient) Enqueue(ctx context.Context, task *asynq.Task, queue string, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if jc.client == nil {
		return nil, fmt.Errorf("AsynqJobClient internal client is not initialized")
	}

	jobID := uuid.New()
	recordParams := JobRecordParams{
		JobID:    jobID,
		TaskType: task.Type(),
		Payload:  task.Payload(),
		Queue:    queue,
		Status:   models.JobStatusEnqueued,
	}
	if err := jc.jobStore.RecordJobEnqueue(ctx, recordParams); err != nil {
		return nil, fmt.Errorf("record job %s before enqueue: %w", jobID, err)
	}

	opts = append(opts, asynq.Queue(queue), asynq.TaskID(jobID.String()))
	info, err := jc.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		log.Errorf("Failed to enqueue task type '%s': %v", task.Type(), err)
		if uerr := jc.jobStore.UpdateJobStatus(context.WithoutCancel(ctx), jobID, models.JobStatusFailed, nil); uerr != nil {
			log.Warnf("Failed to mark job %s failed: %v", jobID, uerr)
		}
		return nil, err
	}
	log.Debugf("Enqueued task type '%s', id=%s queue=%s", task.Type(), info.ID, info.Queue)
	return info, nil
}

// EnqueueCheck queues description for asynchronous classification.
func (jc *AsynqJobClient) EnqueueCheck(ctx context.Context, description string) (*asynq.TaskInfo, error) {
	task, err := tasks.NewCheckTask(description)
	if err != nil {
		return nil, err
	}
	info, err := jc.Enqueue(ctx, task, tasks.QueueChecks, asynq.MaxRetry(3))
	if err != nil {
		return nil, fmt.Errorf("enqueue check job: %w", err)
	}
	return info, nil
}

var _ JobClient = (*AsynqJobClient)(nil)
