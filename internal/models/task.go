package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the three enumerated priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority" gorm:"not null;default:'medium'"`
	DueDate     *time.Time `json:"due_date"`
	Completed   bool       `json:"completed" gorm:"default:false"`

	// ID of the Google Calendar event this task was imported from or
	// exported to. Nil for tasks with no calendar linkage.
	CalendarEventID *string `json:"calendar_event_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskPatch is a partial update to a task. A nil field means "leave it
// alone"; a non-nil field overwrites. Presence is always explicit so a
// patch can distinguish "clear the due date" from "don't touch it".
type TaskPatch struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	Priority        *Priority  `json:"priority"`
	DueDate         *time.Time `json:"dueDate"`
	Completed       *bool      `json:"completed"`
	CalendarEventID *string    `json:"calendarEventId"`
}

// Apply copies the provided fields onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.CalendarEventID != nil {
		t.CalendarEventID = p.CalendarEventID
	}
}
