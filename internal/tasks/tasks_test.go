package tasks

import (
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTaskPayload(t *testing.T) {
	task, err := NewCheckTask("Happy animals in the forest")
	require.NoError(t, err)
	assert.Equal(t, TypeCheckClassify, task.Type())

	p, err := ParseCheckPayload(task)
	require.NoError(t, err)
	assert.Equal(t, "Happy animals in the forest", p.Description)

	_, err = ParseCheckPayload(asynq.NewTask(TypeCheckClassify, []byte("{")))
	assert.Error(t, err)
}
