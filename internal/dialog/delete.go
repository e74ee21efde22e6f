package dialog

import (
	"context"

	"taskdesk/internal/query"
	"taskdesk/internal/service"
	"taskdesk/internal/taskquery"
	"taskdesk/internal/toast"
)

// DeleteDialog asks for confirmation before deleting a task.
type DeleteDialog struct {
	machine
	task     service.Task
	mutation *query.Mutation[string, struct{}]
}

// NewDelete creates a closed delete dialog for task.
func NewDelete(task service.Task, svc service.Service, qc *query.Client, n toast.Notifier) *DeleteDialog {
	d := &DeleteDialog{task: task}
	d.notifier = n
	d.mutation = query.NewMutation(qc, query.MutationOptions[string, struct{}]{
		Fn: func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, svc.DeleteTask(ctx, id)
		},
		Invalidates: []query.Key{taskquery.ListKey},
		OnSuccess:   func(struct{}, string) { d.success("Task deleted") },
		OnError:     func(err error, _ string) { d.failure(err) },
	})
	return d
}

// Task returns the task the dialog would delete.
func (d *DeleteDialog) Task() service.Task {
	return d.task
}

// Prompt is the confirmation question.
func (d *DeleteDialog) Prompt() string {
	return `Delete task "` + d.task.Title + `"? This cannot be undone.`
}

// Open shows the confirmation.
func (d *DeleteDialog) Open() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openLocked() {
		d.mutation.Reset()
	}
}

// Confirm deletes the task. On success the dialog closes.
func (d *DeleteDialog) Confirm(ctx context.Context) error {
	d.mu.Lock()
	if err := d.beginLocked(); err != nil {
		d.mu.Unlock()
		return err
	}
	d.state = Submitting
	d.mu.Unlock()

	_, err := d.mutation.Mutate(ctx, d.task.ID)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.settleLocked(err)
	return err
}
