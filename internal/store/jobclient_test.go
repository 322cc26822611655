package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"podsafe/internal/models"
	"podsafe/internal/tasks"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingJobStore struct {
	calls     []string
	recorded  []JobRecordParams
	updated   map[uuid.UUID]string
	recordErr error
}

func (r *recordingJobStore) RecordJobEnqueue(_ context.Context, params JobRecordParams) error {
	r.calls = append(r.calls, "record")
	if r.recordErr != nil {
		return r.recordErr
	}
	r.recorded = append(r.recorded, params)
	return nil
}

func (r *recordingJobStore) UpdateJobStatus(_ context.Context, jobID uuid.UUID, status string, _ *uuid.UUID) error {
	r.calls = append(r.calls, "update:"+status)
	if r.updated == nil {
		r.updated = map[uuid.UUID]string{}
	}
	r.updated[jobID] = status
	return nil
}

func (r *recordingJobStore) GetJob(_ context.Context, jobID uuid.UUID) (*models.BackgroundJob, error) {
	return nil, ErrNotFound
}

// unreachableRedis points at a port nothing listens on.
func unreachableRedis() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond}
}

func TestAsynqJobClient_RecordsBeforeEnqueue(t *testing.T) {
	js := &recordingJobStore{}
	jc, err := NewAsynqJobClient(unreachableRedis(), js)
	require.NoError(t, err)
	defer jc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = jc.EnqueueCheck(ctx, "Science for kids")
	require.Error(t, err)

	// The row is written first; the failed enqueue then marks it failed.
	assert.Equal(t, []string{"record", "update:" + models.JobStatusFailed}, js.calls)
	require.Len(t, js.recorded, 1)
	rec := js.recorded[0]
	assert.Equal(t, tasks.TypeCheckClassify, rec.TaskType)
	assert.Equal(t, tasks.QueueChecks, rec.Queue)
	assert.Equal(t, models.JobStatusEnqueued, rec.Status)
	assert.Equal(t, models.JobStatusFailed, js.updated[rec.JobID])
}

func TestAsynqJobClient_RecordFailureSkipsEnqueue(t *testing.T) {
	js := &recordingJobStore{recordErr: errors.New("db down")}
	jc, err := NewAsynqJobClient(unreachableRedis(), js)
	require.NoError(t, err)
	defer jc.Close()

	_, err = jc.EnqueueCheck(context.Background(), "Science for kids")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Equal(t, []string{"record"}, js.calls)
}
