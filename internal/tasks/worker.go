package tasks

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"recipe_app_echo/internal/models"
)

// History statuses
const (
	RunStatusSuccess         = "success"
	RunStatusFailure         = "failure"
	RunStatusHandlerNotFound = "handler_not_found"
)

// Worker runs scheduled tasks that are due
type Worker struct {
	db       *gorm.DB
	registry *Registry
	log      *zap.Logger
	now      func() time.Time
}

func NewWorker(db *gorm.DB, registry *Registry, log *zap.Logger) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{db: db, registry: registry, log: log, now: time.Now}
}

// Run processes due tasks right away and then on every tick until ctx is done
func (w *Worker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	if _, err := w.RunDue(ctx); err != nil && ctx.Err() == nil {
		w.log.Error("Error processing scheduled tasks", zap.Error(err))
	}
}

// RunDue executes every active task whose due time has passed and returns
// how many were processed
func (w *Worker) RunDue(ctx context.Context) (int, error) {
	var pending []models.ScheduledTask
	if err := w.db.WithContext(ctx).
		Where("status = ? AND due <= ?", models.ScheduledTaskStatusActive, w.now()).
		Order("due asc").
		Find(&pending).Error; err != nil {
		return 0, fmt.Errorf("fetch pending tasks: %w", err)
	}

	if len(pending) == 0 {
		w.log.Debug("No pending tasks found")
		return 0, nil
	}
	w.log.Info("Found pending tasks", zap.Int("count", len(pending)))

	processed := 0
	for _, task := range pending {
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}
		if err := w.execute(ctx, task); err != nil {
			return processed, err
		}
		processed++
	}
	return processed, nil
}

// execute runs the task up to its attempt limit, recording every attempt,
// then marks it done, failed, or due again for recurring tasks
func (w *Worker) execute(ctx context.Context, task models.ScheduledTask) error {
	log := w.log.With(zap.Uint("task_id", task.ID), zap.String("task_name", task.TaskName))
	db := w.db.WithContext(ctx)

	if task.Arguments == nil {
		task.Arguments = make(map[string]interface{})
	}

	handler, found := w.registry.Get(task.TaskName)
	if !found {
		log.Warn("Task handler not found, marking as failure")
		now := w.now()
		if err := db.Create(&models.ScheduledTaskHistory{
			ScheduledTaskID: task.ID,
			TaskName:        task.TaskName,
			RunAt:           now,
			Status:          RunStatusHandlerNotFound,
			AttemptNumber:   1,
			Arguments:       task.Arguments,
			Result:          map[string]interface{}{"error": "Handler not found"},
		}).Error; err != nil {
			return err
		}
		return db.Model(&task).Updates(map[string]interface{}{
			"status":   models.ScheduledTaskStatusFailure,
			"last_run": now,
		}).Error
	}

	var (
		startTime time.Time
		runErr    error
	)
	for attempt := 1; attempt <= task.Attempts(); attempt++ {
		startTime = w.now()
		var result map[string]interface{}
		result, runErr = handler(ctx, task)
		runtime := w.now().Sub(startTime)

		status := RunStatusSuccess
		if runErr != nil {
			status = RunStatusFailure
			result = map[string]interface{}{"error": runErr.Error()}
			log.Warn("Task attempt failed", zap.Int("attempt", attempt), zap.Error(runErr))
		} else {
			log.Info("Task completed", zap.Int("attempt", attempt), zap.Duration("runtime", runtime))
		}

		if err := db.Create(&models.ScheduledTaskHistory{
			ScheduledTaskID: task.ID,
			TaskName:        task.TaskName,
			RunAt:           startTime,
			RuntimeMillis:   runtime.Milliseconds(),
			Status:          status,
			AttemptNumber:   attempt,
			Arguments:       task.Arguments,
			Result:          result,
		}).Error; err != nil {
			return err
		}

		if runErr == nil || ctx.Err() != nil {
			break
		}
	}

	updates := map[string]interface{}{"last_run": startTime}
	switch {
	case runErr != nil:
		updates["status"] = models.ScheduledTaskStatusFailure
	case task.IsRecurring():
		// only reschedule into the future so the task cannot run twice per tick
		if next := task.NextDue(w.now()); next.After(task.Due) && next.After(startTime) {
			updates["status"] = models.ScheduledTaskStatusActive
			updates["due"] = next
		} else {
			updates["status"] = models.ScheduledTaskStatusDone
		}
	default:
		updates["status"] = models.ScheduledTaskStatusDone
	}

	return db.Model(&task).Updates(updates).Error
}
