package model

import "time"

// TaskStatus represents the workflow state of a task.
type TaskStatus string

const (
	TaskBacklog    TaskStatus = "BACKLOG"
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskReview     TaskStatus = "REVIEW"
	TaskDone       TaskStatus = "DONE"
	TaskBlocked    TaskStatus = "BLOCKED"
)

// String returns the string representation of the status.
func (s TaskStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskBacklog, TaskTodo, TaskInProgress, TaskReview, TaskDone, TaskBlocked:
		return true
	}
	return false
}

// Task is a unit of work inside a project, optionally assigned to a sprint.
type Task struct {
	ID            string     `json:"id"`
	ProjectID     string     `json:"project_id"`
	SprintID      *string    `json:"sprint_id,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Status        TaskStatus `json:"status"`
	Priority      int        `json:"priority"`
	EstimateHours float64    `json:"estimate_hours"`
	ActualHours   float64    `json:"actual_hours"`
	Order         int        `json:"order"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Populated by queries, not stored in the tasks table.
	Tags []*Tag `json:"tags,omitempty"`
}

// IsDone reports whether the task is finished.
func (t *Task) IsDone() bool {
	return t.Status == TaskDone
}
