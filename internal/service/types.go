// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"encoding/json"
	"fmt"
	"time"
)

// Title length bounds, counted in characters.
const (
	TitleMinLen = 1
	TitleMaxLen = 255
)

// DateLayout is the calendar-date format used for due dates in forms and output.
const DateLayout = "2006-01-02"

// Task represents a single task as the server returns it.
// ID, CreatedAt and UpdatedAt are server-owned.
type Task struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description *string    `json:"description" yaml:"description,omitempty"`
	Priority    Priority   `json:"priority" yaml:"priority"`
	Status      Status     `json:"status" yaml:"status"`
	DueDate     *time.Time `json:"due_date" yaml:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`
}

// UnmarshalJSON decodes a task, accepting timestamps with or without an offset.
func (t *Task) UnmarshalJSON(b []byte) error {
	type plain Task
	var raw struct {
		plain
		DueDate   *string `json:"due_date"`
		CreatedAt string  `json:"created_at"`
		UpdatedAt string  `json:"updated_at"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	task := Task(raw.plain)
	var err error
	if raw.DueDate != nil {
		due, err := ParseTime(*raw.DueDate)
		if err != nil {
			return fmt.Errorf("due_date: %w", err)
		}
		task.DueDate = &due
	}
	if task.CreatedAt, err = parseOptionalTime(raw.CreatedAt); err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	if task.UpdatedAt, err = parseOptionalTime(raw.UpdatedAt); err != nil {
		return fmt.Errorf("updated_at: %w", err)
	}
	*t = task
	return nil
}

// NaiveTimeLayout is the server's timestamp format: no offset, meaning UTC.
const NaiveTimeLayout = "2006-01-02T15:04:05.999999"

// ParseTime parses an RFC 3339 timestamp, a timestamp without an offset
// (read as UTC) or a bare date.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", DateLayout} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func parseOptionalTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return ParseTime(s)
}

// TaskPage is the list response envelope.
type TaskPage struct {
	Data  []Task `json:"data"`
	Count int    `json:"count"`
}

// TaskCreate is the request body for creating a task.
type TaskCreate struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// TaskUpdate is a partial update. Nil fields are left unchanged.
// ClearDueDate sends an explicit null for due_date.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Priority     *Priority
	Status       *Status
	DueDate      *time.Time
	ClearDueDate bool
}

// IsEmpty reports whether the update changes nothing.
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Priority == nil &&
		u.Status == nil && u.DueDate == nil && !u.ClearDueDate
}

// Fields returns the update as a JSON-ready map holding only the set fields.
func (u TaskUpdate) Fields() map[string]any {
	m := make(map[string]any)
	if u.Title != nil {
		m["title"] = *u.Title
	}
	if u.Description != nil {
		m["description"] = *u.Description
	}
	if u.Priority != nil {
		m["priority"] = *u.Priority
	}
	if u.Status != nil {
		m["status"] = *u.Status
	}
	switch {
	case u.ClearDueDate:
		m["due_date"] = nil
	case u.DueDate != nil:
		m["due_date"] = *u.DueDate
	}
	return m
}

// Apply returns a copy of t with the update applied.
// Backends that cannot patch natively use it to build the full record.
func (u TaskUpdate) Apply(t Task) Task {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		d := *u.Description
		t.Description = &d
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	switch {
	case u.ClearDueDate:
		t.DueDate = nil
	case u.DueDate != nil:
		d := *u.DueDate
		t.DueDate = &d
	}
	return t
}
