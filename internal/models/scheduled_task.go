package models

import (
	"time"

	"github.com/teambition/rrule-go"
	"gorm.io/gorm"
)

// ScheduledTaskStatus represents the status of a scheduled task
type ScheduledTaskStatus string

const (
	ScheduledTaskStatusActive   ScheduledTaskStatus = "active"
	ScheduledTaskStatusDone     ScheduledTaskStatus = "done"
	ScheduledTaskStatusFailure  ScheduledTaskStatus = "failure"
	ScheduledTaskStatusDisabled ScheduledTaskStatus = "disabled"
)

// ScheduledTaskType represents the type of scheduled task
type ScheduledTaskType string

const (
	ScheduledTaskTypeOneTime   ScheduledTaskType = "onetime"
	ScheduledTaskTypeRecurring ScheduledTaskType = "recurring"
)

// ScheduledTask is a maintenance job (rating recompute, Firestore resync, ...)
// picked up by the worker once Due has passed
type ScheduledTask struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	TaskName          string                 `gorm:"type:varchar(255)" json:"task_name"`
	Arguments         map[string]interface{} `gorm:"serializer:json" json:"arguments"`
	LastRun           *time.Time             `json:"last_run"`
	Due               time.Time              `gorm:"index:idx_scheduled_tasks_status_due,priority:2" json:"due"`
	RecurringInterval *string                `gorm:"type:text" json:"recurring_interval"` // RFC 5545 RRULE
	Status            ScheduledTaskStatus    `gorm:"type:varchar(20);index:idx_scheduled_tasks_status_due,priority:1" json:"status"`
	TaskType          ScheduledTaskType      `gorm:"type:varchar(20);default:'onetime'" json:"task_type"`
	MaxAttempt        int                    `gorm:"default:1" json:"max_attempt"`
}

// IsRecurring reports whether the task has a usable recurrence rule
func (t ScheduledTask) IsRecurring() bool {
	return t.TaskType == ScheduledTaskTypeRecurring && t.RecurringInterval != nil && *t.RecurringInterval != ""
}

// NextDue returns the first occurrence of the recurrence rule after now,
// anchored at Due. One-time tasks and unparsable rules return Due.
func (t ScheduledTask) NextDue(now time.Time) time.Time {
	if !t.IsRecurring() {
		return t.Due
	}

	rule, err := rrule.StrToRRule(*t.RecurringInterval)
	if err != nil {
		return t.Due
	}
	rule.DTStart(t.Due)
	if next := rule.After(now, false); !next.IsZero() {
		return next
	}
	return t.Due
}

// Attempts returns the number of tries the worker makes, at least one
func (t ScheduledTask) Attempts() int {
	if t.MaxAttempt < 1 {
		return 1
	}
	return t.MaxAttempt
}

// ScheduledTaskHistory records one execution attempt of a scheduled task
type ScheduledTaskHistory struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	ScheduledTaskID uint      `gorm:"index" json:"scheduled_task_id"`

	TaskName      string                 `gorm:"type:varchar(255)" json:"task_name"`
	RunAt         time.Time              `json:"run_at"`
	RuntimeMillis int64                  `json:"runtime_ms"`
	Status        string                 `gorm:"type:varchar(50)" json:"status"`
	AttemptNumber int                    `json:"attempt_number"`
	Arguments     map[string]interface{} `gorm:"serializer:json" json:"arguments"`
	Result        map[string]interface{} `gorm:"serializer:json" json:"result"`
}
