package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe_app_echo/internal/models"
)

func TestBuildScheduledTask(t *testing.T) {
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	type args struct {
		Message string `json:"message"`
	}

	task, err := BuildScheduledTask("log_info", args{Message: "hi"}, due, nil, models.ScheduledTaskTypeOneTime, 2)
	require.NoError(t, err)
	assert.Equal(t, "hi", task.Arguments["message"])
	assert.Equal(t, models.ScheduledTaskStatusActive, task.Status)
	assert.Equal(t, 2, task.MaxAttempt)

	_, err = BuildScheduledTask("recompute_ratings", nil, due, nil, models.ScheduledTaskTypeRecurring, 1)
	assert.Error(t, err)

	_, err = BuildScheduledTask("recompute_ratings", nil, due, strPtr("FREQ=SOMETIMES"), models.ScheduledTaskTypeRecurring, 1)
	assert.Error(t, err)

	_, err = BuildScheduledTask("x", nil, due, nil, models.ScheduledTaskType("weekly"), 1)
	assert.Error(t, err)

	task, err = BuildScheduledTask("recompute_ratings", nil, due, strPtr("FREQ=HOURLY;INTERVAL=6"), models.ScheduledTaskTypeRecurring, 1)
	require.NoError(t, err)
	assert.True(t, task.IsRecurring())
}
