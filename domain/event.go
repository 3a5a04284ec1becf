package domain

import "time"

// EventName identifies a task lifecycle notification.
type EventName string

const (
	EventTaskCreated EventName = "task.created"
	EventTaskUpdated EventName = "task.updated"
	EventTaskDeleted EventName = "task.deleted"
)

// TaskEvent is published after a task mutation has been persisted.
// Task is nil for deletions; TaskID is always set.
type TaskEvent struct {
	Name       EventName `json:"name"`
	TaskID     int       `json:"task_id"`
	Task       *Task     `json:"task,omitempty"`
	ActorID    int       `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
