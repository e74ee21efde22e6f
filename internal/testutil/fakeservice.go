// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskdesk/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu    sync.RWMutex
	tasks []service.Task
	now   time.Time

	// Error injection for testing
	ListTasksErr  error
	GetTaskErr    error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error

	// Gate, when non-nil, makes every write wait until it is closed or
	// receives a value.
	Gate chan struct{}

	// Call counters
	ListCalls   int
	CreateCalls int
	UpdateCalls int
	DeleteCalls int

	// LastUpdate is the most recent update request.
	LastUpdate service.TaskUpdate
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		now: time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC),
	}
}

// AddTask adds a task with the given ID and title and default fields.
func (f *FakeService) AddTask(id, title string) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{
		ID:        id,
		Title:     title,
		Priority:  service.DefaultPriority,
		Status:    service.DefaultStatus,
		CreatedAt: f.tick(),
	}
	t.UpdatedAt = t.CreatedAt
	f.tasks = append(f.tasks, t)
	return t
}

// Put stores t as-is, replacing any task with the same ID.
func (f *FakeService) Put(t service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == t.ID {
			f.tasks[i] = t
			return
		}
	}
	f.tasks = append(f.tasks, t)
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, skip, limit int) (service.TaskPage, error) {
	f.mu.Lock()
	f.ListCalls++
	f.mu.Unlock()
	if f.ListTasksErr != nil {
		return service.TaskPage{}, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	if skip < 0 {
		skip = 0
	}
	if skip >= len(f.tasks) {
		return service.TaskPage{Data: []service.Task{}, Count: 0}, nil
	}
	end := len(f.tasks)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	data := make([]service.Task, end-skip)
	copy(data, f.tasks[skip:end])
	return service.TaskPage{Data: data, Count: len(data)}, nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, id string) (service.Task, error) {
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return service.Task{}, service.ErrNotFound
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, in service.TaskCreate) (service.Task, error) {
	if err := f.wait(ctx); err != nil {
		return service.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls++
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}

	t := service.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      in.Status,
		DueDate:     in.DueDate,
		CreatedAt:   f.tick(),
	}
	t.UpdatedAt = t.CreatedAt
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, in service.TaskUpdate) (service.Task, error) {
	if err := f.wait(ctx); err != nil {
		return service.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	f.LastUpdate = in
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}

	for i, t := range f.tasks {
		if t.ID == id {
			t = in.Apply(t)
			t.UpdatedAt = f.tick()
			f.tasks[i] = t
			return t, nil
		}
	}
	return service.Task{}, service.ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeleteCalls++
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}

func (f *FakeService) wait(ctx context.Context) error {
	if f.Gate == nil {
		return nil
	}
	select {
	case <-f.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tick advances the fake clock by one minute. Caller holds f.mu.
func (f *FakeService) tick() time.Time {
	f.now = f.now.Add(time.Minute)
	return f.now
}
