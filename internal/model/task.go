package model

import "time"

// Task statuses as reported by the backend.
const (
	TaskStatusNotStarted = "NOT_STARTED"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusOnHold     = "ON_HOLD"
	TaskStatusCompleted  = "COMPLETED"
)

// Task is a work item with its nested subtasks as returned by the API.
type Task struct {
	// ID is the server-assigned identifier.
	ID string `json:"id"`

	// Name is the human-readable task summary.
	Name string `json:"name"`

	// Description is the full body text.
	Description string `json:"description"`

	// Status is one of the TaskStatus* constants.
	Status string `json:"status"`

	// StartDate and DueDate bound the task's schedule.
	StartDate *time.Time `json:"startDate,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`

	// SubTasks are the checklist items nested under this task.
	SubTasks []SubTask `json:"subTasks,omitempty"`
}

// SubTask is a single checklist item under a task.
type SubTask struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// CompletedCount returns how many of the task's subtasks are done.
func (t *Task) CompletedCount() int {
	n := 0
	for _, st := range t.SubTasks {
		if st.Completed {
			n++
		}
	}
	return n
}
