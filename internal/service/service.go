// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for task backend operations.
// All REST calls go through this interface.
// The UI never imports a backend package directly.
type Service interface {
	// ListTasks returns one page of tasks in server order.
	// skip is the number of tasks to skip; limit caps the page size.
	ListTasks(ctx context.Context, skip, limit int) (TaskPage, error)

	// GetTask returns a single task.
	// Returns ErrNotFound if the task does not exist.
	GetTask(ctx context.Context, id string) (Task, error)

	// CreateTask creates a task and returns it as stored.
	CreateTask(ctx context.Context, in TaskCreate) (Task, error)

	// UpdateTask applies a partial update and returns the stored task.
	UpdateTask(ctx context.Context, id string, in TaskUpdate) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id string) error
}
