package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"recipe_app_echo/internal/models"
	"recipe_app_echo/internal/tasks"
)

const dueLayout = "2006-01-02 15:04"

var scheduleOpts struct {
	taskName   string
	arguments  string
	due        string
	taskType   string
	recurring  string
	maxAttempt int
}

// scheduleCmd queues a task for the worker
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Queue a task for the worker",
	Long: `Queue a one-time or recurring task for the worker.

Recurring tasks take an RRULE, for example:
  recipectl schedule --task_name recompute_ratings --due "2026-01-01 03:00" \
    --tasktype recurring --recurring "FREQ=DAILY;INTERVAL=1"`,
	RunE: runSchedule,
}

func init() {
	f := scheduleCmd.Flags()
	f.StringVar(&scheduleOpts.taskName, "task_name", "", "Name of the task (required)")
	f.StringVar(&scheduleOpts.arguments, "arguments", "{}", "JSON arguments for the task")
	f.StringVar(&scheduleOpts.due, "due", "", "Due date, RFC3339 or '2006-01-02 15:04' in local time (required)")
	f.StringVar(&scheduleOpts.taskType, "tasktype", string(models.ScheduledTaskTypeOneTime), "Task type: onetime or recurring")
	f.StringVar(&scheduleOpts.recurring, "recurring", "", "RRULE recurrence for recurring tasks")
	f.IntVar(&scheduleOpts.maxAttempt, "max_attempt", 3, "Max attempts per run")
	_ = scheduleCmd.MarkFlagRequired("task_name")
	_ = scheduleCmd.MarkFlagRequired("due")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	var taskArgs map[string]interface{}
	if err := json.Unmarshal([]byte(scheduleOpts.arguments), &taskArgs); err != nil {
		return fmt.Errorf("invalid JSON arguments: %w", err)
	}

	due, err := parseDue(scheduleOpts.due, time.Local)
	if err != nil {
		return err
	}

	var recurring *string
	if scheduleOpts.recurring != "" {
		recurring = &scheduleOpts.recurring
	}

	task, err := tasks.BuildScheduledTask(scheduleOpts.taskName, taskArgs, due, recurring,
		models.ScheduledTaskType(scheduleOpts.taskType), scheduleOpts.maxAttempt)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.DB.WithContext(cmd.Context()).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Successfully created task ID: %d\n", task.ID)
	fmt.Fprintf(out, "Task: %s\nDue: %s\nType: %s\n", task.TaskName, task.Due.Format(time.RFC3339), task.TaskType)
	return nil
}

// parseDue accepts RFC3339 or the short layout interpreted in loc
func parseDue(value string, loc *time.Location) (time.Time, error) {
	if due, err := time.Parse(time.RFC3339, value); err == nil {
		return due, nil
	}
	due, err := time.ParseInLocation(dueLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q, use %q or RFC3339", value, dueLayout)
	}
	return due, nil
}
