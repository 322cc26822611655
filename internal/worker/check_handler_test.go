package worker

import (
	"context"
	"errors"
	"testing"

	"podsafe/internal/models"
	"podsafe/internal/services"
	"podsafe/internal/store"
	"podsafe/internal/store/sqlite"
	"podsafe/internal/tasks"
	"podsafe/pkg/classifier"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	check *models.Check
	err   error
	got   services.CheckParams
}

func (s *stubChecker) Check(_ context.Context, params services.CheckParams) (*models.Check, error) {
	s.got = params
	return s.check, s.err
}

func setupJob(t *testing.T) (*sqlite.Store, uuid.UUID) {
	t.Helper()
	st, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	jobID := uuid.New()
	require.NoError(t, st.RecordJobEnqueue(context.Background(), store.JobRecordParams{
		JobID:    jobID,
		TaskType: tasks.TypeCheckClassify,
		Payload:  []byte(`{"description":"x"}`),
		Queue:    tasks.QueueChecks,
		Status:   models.JobStatusEnqueued,
	}))
	return st, jobID
}

func newTask(t *testing.T, description string) *asynq.Task {
	t.Helper()
	task, err := tasks.NewCheckTask(description)
	require.NoError(t, err)
	return task
}

func TestProcessCheck_Success(t *testing.T) {
	st, jobID := setupJob(t)
	check := &models.Check{ID: uuid.New(), Status: models.CheckStatusSucceeded, IsForKids: true}
	checker := &stubChecker{check: check}

	err := processCheck(context.Background(), CheckDeps{Checker: checker, JobStore: st}, jobID.String(), newTask(t, "<b>Happy</b> animals"))
	require.NoError(t, err)
	assert.Equal(t, services.CheckParams{Input: "<b>Happy</b> animals", Raw: true}, checker.got)

	job, err := st.GetJob(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	require.NotNil(t, job.CheckID)
	assert.Equal(t, check.ID, *job.CheckID)
}

func TestProcessCheck_EmptyInputCompletes(t *testing.T) {
	st, jobID := setupJob(t)
	checker := &stubChecker{check: &models.Check{ID: uuid.New(), Status: models.CheckStatusEmptyInput}, err: models.ErrEmptyInput}

	err := processCheck(context.Background(), CheckDeps{Checker: checker, JobStore: st}, jobID.String(), newTask(t, "the and"))
	require.NoError(t, err)

	job, err := st.GetJob(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
}

func TestProcessCheck_RequestFailedSkipsRetry(t *testing.T) {
	st, jobID := setupJob(t)
	checker := &stubChecker{
		check: &models.Check{ID: uuid.New(), Status: models.CheckStatusFailed},
		err:   errors.Join(classifier.ErrRequestFailed, errors.New("status 503")),
	}

	err := processCheck(context.Background(), CheckDeps{Checker: checker, JobStore: st}, jobID.String(), newTask(t, "crime stories"))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.ErrorIs(t, err, classifier.ErrRequestFailed)

	job, err := st.GetJob(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	require.NotNil(t, job.CheckID)
}

func TestProcessCheck_BadPayload(t *testing.T) {
	checker := &stubChecker{}
	err := processCheck(context.Background(), CheckDeps{Checker: checker}, "", asynq.NewTask(tasks.TypeCheckClassify, []byte("not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, checker.got.Input)
}

func TestHandleCheckTask_WithoutJobStore(t *testing.T) {
	checker := &stubChecker{check: &models.Check{ID: uuid.New(), Status: models.CheckStatusSucceeded}}
	handler := HandleCheckTask(CheckDeps{Checker: checker})
	require.NoError(t, handler.ProcessTask(context.Background(), newTask(t, "science for kids")))
	assert.Equal(t, "science for kids", checker.got.Input)
}
