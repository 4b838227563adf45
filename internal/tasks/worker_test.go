package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"recipe_app_echo/internal/models"
	"recipe_app_echo/internal/services"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := services.InitDB(":memory:", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, services.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func strPtr(s string) *string { return &s }

func histories(t *testing.T, db *gorm.DB, taskID uint) []models.ScheduledTaskHistory {
	t.Helper()
	var out []models.ScheduledTaskHistory
	require.NoError(t, db.Where("scheduled_task_id = ?", taskID).Order("attempt_number asc").Find(&out).Error)
	return out
}

func reload(t *testing.T, db *gorm.DB, id uint) models.ScheduledTask {
	t.Helper()
	var task models.ScheduledTask
	require.NoError(t, db.First(&task, id).Error)
	return task
}

func TestWorkerRunDue(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		task        models.ScheduledTask
		handler     func(calls *int) TaskHandler
		status      models.ScheduledTaskStatus
		histories   []string
		due         time.Time
		calls       int
		notExecuted bool
	}{
		{
			name: "one time success",
			task: models.ScheduledTask{TaskName: "job", Due: now.Add(-time.Minute), TaskType: models.ScheduledTaskTypeOneTime, MaxAttempt: 3},
			handler: func(calls *int) TaskHandler {
				return func(ctx context.Context, task models.ScheduledTask) (map[string]interface{}, error) {
					*calls++
					return map[string]interface{}{"ok": true}, nil
				}
			},
			status:    models.ScheduledTaskStatusDone,
			histories: []string{RunStatusSuccess},
			calls:     1,
		},
		{
			name: "retries until success",
			task: models.ScheduledTask{TaskName: "job", Due: now.Add(-time.Minute), TaskType: models.ScheduledTaskTypeOneTime, MaxAttempt: 3},
			handler: func(calls *int) TaskHandler {
				return func(ctx context.Context, task models.ScheduledTask) (map[string]interface{}, error) {
					*calls++
					if *calls < 2 {
						return nil, errors.New("flaky")
					}
					return nil, nil
				}
			},
			status:    models.ScheduledTaskStatusDone,
			histories: []string{RunStatusFailure, RunStatusSuccess},
			calls:     2,
		},
		{
			name: "fails after max attempts",
			task: models.ScheduledTask{TaskName: "job", Due: now.Add(-time.Minute), TaskType: models.ScheduledTaskTypeOneTime, MaxAttempt: 2},
			handler: func(calls *int) TaskHandler {
				return func(ctx context.Context, task models.ScheduledTask) (map[string]interface{}, error) {
					*calls++
					return nil, errors.New("broken")
				}
			},
			status:    models.ScheduledTaskStatusFailure,
			histories: []string{RunStatusFailure, RunStatusFailure},
			calls:     2,
		},
		{
			name: "recurring is rescheduled",
			task: models.ScheduledTask{
				TaskName:          "job",
				Due:               time.Date(2024, 2, 29, 3, 0, 0, 0, time.UTC),
				TaskType:          models.ScheduledTaskTypeRecurring,
				RecurringInterval: strPtr("FREQ=DAILY"),
				MaxAttempt:        1,
			},
			handler: func(calls *int) TaskHandler {
				return func(ctx context.Context, task models.ScheduledTask) (map[string]interface{}, error) {
					*calls++
					return nil, nil
				}
			},
			status:    models.ScheduledTaskStatusActive,
			histories: []string{RunStatusSuccess},
			due:       time.Date(2024, 3, 2, 3, 0, 0, 0, time.UTC),
			calls:     1,
		},
		{
			name:      "unknown handler",
			task:      models.ScheduledTask{TaskName: "missing", Due: now.Add(-time.Minute), TaskType: models.ScheduledTaskTypeOneTime},
			status:    models.ScheduledTaskStatusFailure,
			histories: []string{RunStatusHandlerNotFound},
		},
		{
			name: "not yet due",
			task: models.ScheduledTask{TaskName: "job", Due: now.Add(time.Hour), TaskType: models.ScheduledTaskTypeOneTime},
			handler: func(calls *int) TaskHandler {
				return func(ctx context.Context, task models.ScheduledTask) (map[string]interface{}, error) {
					*calls++
					return nil, nil
				}
			},
			status:      models.ScheduledTaskStatusActive,
			notExecuted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			task := tt.task
			task.Status = models.ScheduledTaskStatusActive
			require.NoError(t, db.Create(&task).Error)

			calls := 0
			registry := NewRegistry()
			if tt.handler != nil {
				registry.Register("job", tt.handler(&calls))
			}

			w := NewWorker(db, registry, nil)
			w.now = func() time.Time { return now }

			processed, err := w.RunDue(context.Background())
			require.NoError(t, err)
			if tt.notExecuted {
				assert.Zero(t, processed)
			} else {
				assert.Equal(t, 1, processed)
			}
			assert.Equal(t, tt.calls, calls)

			got := reload(t, db, task.ID)
			assert.Equal(t, tt.status, got.Status)
			if !tt.due.IsZero() {
				assert.True(t, tt.due.Equal(got.Due), "due = %s", got.Due)
			}

			statuses := []string{}
			for _, h := range histories(t, db, task.ID) {
				statuses = append(statuses, h.Status)
			}
			if tt.histories == nil {
				tt.histories = []string{}
			}
			assert.Equal(t, tt.histories, statuses)
		})
	}
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	DefineTasks(r, Deps{DB: newTestDB(t)})
	assert.Equal(t, []string{"log_info", "mirror_recipes", "recompute_ratings"}, r.Names())
}

func TestRecomputeRatingsTask(t *testing.T) {
	db := newTestDB(t)
	recipe := models.Recipe{Title: "Pho"}
	require.NoError(t, db.Create(&recipe).Error)
	require.NoError(t, db.Create(&models.RecipeRating{RecipeID: recipe.ID, UserUID: "a", Value: 3}).Error)

	r := NewRegistry()
	DefineTasks(r, Deps{DB: db, Recipes: services.NewRecipeService(db, services.RecipeServiceOptions{})})

	handler, ok := r.Get("recompute_ratings")
	require.True(t, ok)
	result, err := handler(context.Background(), models.ScheduledTask{})
	require.NoError(t, err)
	assert.Equal(t, 1, result["changed"])

	var got models.Recipe
	require.NoError(t, db.First(&got, recipe.ID).Error)
	assert.Equal(t, 3.0, got.Rating)
	assert.Equal(t, 1, got.RatingCount)
}

func TestMirrorTaskSkipsWhenDisabled(t *testing.T) {
	r := NewRegistry()
	DefineTasks(r, Deps{DB: newTestDB(t)})

	handler, ok := r.Get("mirror_recipes")
	require.True(t, ok)
	result, err := handler(context.Background(), models.ScheduledTask{})
	require.NoError(t, err)
	assert.Equal(t, "skipped", result["status"])
}
