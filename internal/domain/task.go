package domain

import (
	"strings"
	"time"
)

type Task struct {
	ID           string
	ProjectID    string
	ParentTaskID *string
	Title        string
	Description  string
	AssigneeID   *string
	Cost         float64
	Status       TaskStatus
	Priority     TaskPriority
	Deadline     *time.Time
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return Invalidf("task title is required")
	}
	if t.ProjectID == "" {
		return Invalidf("task project is required")
	}
	if !t.Status.Valid() {
		return Invalidf("unknown task status %q", t.Status)
	}
	if !t.Priority.Valid() {
		return Invalidf("unknown task priority %q", t.Priority)
	}
	if t.Cost < 0 {
		return Invalidf("task cost must be >= 0")
	}
	if t.ParentTaskID != nil && *t.ParentTaskID == t.ID {
		return Invalidf("task cannot be its own parent")
	}
	return nil
}

func (t *Task) IsCompleted() bool {
	return t.Status == TaskCompleted
}

// SetStatus moves the task to s and keeps CompletedAt consistent with it.
func (t *Task) SetStatus(s TaskStatus, now time.Time) {
	t.Status = s
	if s == TaskCompleted {
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	} else {
		t.CompletedAt = nil
	}
	t.UpdatedAt = now
}
