package dialog

import (
	"context"
	"errors"
	"fmt"

	"taskdesk/internal/form"
	"taskdesk/internal/query"
	"taskdesk/internal/service"
	"taskdesk/internal/taskquery"
	"taskdesk/internal/toast"
)

// formDialog is the part shared by the create and edit dialogs.
type formDialog struct {
	machine
	values    form.Values
	fieldErrs *form.ValidationError
	// check validates values; called with mu held.
	check func(form.Values) error
}

// Values returns the current form values.
func (d *formDialog) Values() form.Values {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.values
}

// SetValues replaces the form values. Ignored while submitting.
func (d *formDialog) SetValues(v form.Values) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Submitting {
		return
	}
	d.values = v
}

// Set assigns one field by form name. Ignored while submitting.
func (d *formDialog) Set(field, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Submitting {
		return query.ErrPending
	}
	return d.values.Set(field, value)
}

// FieldErrors returns the validation errors of the last submit attempt.
func (d *formDialog) FieldErrors() *form.ValidationError {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fieldErrs
}

// CanSubmit reports whether the submit control should be enabled for v.
func (d *formDialog) CanSubmit(v form.Values) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return (d.state == Open || d.state == Failed) && d.check(v) == nil
}

// prepare validates the form and moves the dialog to submitting.
// convert turns the values into a request.
func prepare[T any](d *formDialog, convert func(form.Values) (T, error)) (T, error) {
	var zero T
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.beginLocked(); err != nil {
		return zero, err
	}
	in, err := convert(d.values)
	if err != nil {
		var ve *form.ValidationError
		if errors.As(err, &ve) {
			d.fieldErrs = ve
			return zero, fmt.Errorf("%w: %w", ErrInvalid, ve)
		}
		return zero, err
	}
	d.fieldErrs = nil
	d.state = Submitting
	return in, nil
}

// CreateDialog is the modal form that creates a task.
type CreateDialog struct {
	formDialog
	mutation *query.Mutation[service.TaskCreate, service.Task]
}

// NewCreate creates a closed create dialog.
func NewCreate(svc service.Service, qc *query.Client, n toast.Notifier) *CreateDialog {
	d := &CreateDialog{}
	d.notifier = n
	d.values = form.Defaults()
	d.check = form.Values.Validate
	d.mutation = query.NewMutation(qc, query.MutationOptions[service.TaskCreate, service.Task]{
		Fn:          svc.CreateTask,
		Invalidates: []query.Key{taskquery.ListKey},
		OnSuccess:   func(service.Task, service.TaskCreate) { d.success("Task created") },
		OnError:     func(err error, _ service.TaskCreate) { d.failure(err) },
	})
	return d
}

// Open shows the dialog. Form values survive a close without submit.
func (d *CreateDialog) Open() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openLocked() {
		d.mutation.Reset()
	}
}

// Submit validates the form and creates the task.
// On success the form is reset and the dialog closes.
// On a request error the dialog stays open with its values.
func (d *CreateDialog) Submit(ctx context.Context) (service.Task, error) {
	in, err := prepare(&d.formDialog, form.Values.ToCreate)
	if err != nil {
		return service.Task{}, err
	}

	task, err := d.mutation.Mutate(ctx, in)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.settleLocked(err)
	if err != nil {
		return service.Task{}, err
	}
	d.values = form.Defaults()
	return task, nil
}

// EditDialog is the modal form that updates a task.
type EditDialog struct {
	formDialog
	task     service.Task
	mutation *query.Mutation[taskUpdate, service.Task]
}

type taskUpdate struct {
	id string
	in service.TaskUpdate
}

// NewEdit creates a closed edit dialog for task.
func NewEdit(task service.Task, svc service.Service, qc *query.Client, n toast.Notifier) *EditDialog {
	d := &EditDialog{task: task}
	d.notifier = n
	d.values = form.FromTask(task)
	d.check = func(v form.Values) error { return v.ValidateEdit(d.task) }
	d.mutation = query.NewMutation(qc, query.MutationOptions[taskUpdate, service.Task]{
		Fn: func(ctx context.Context, u taskUpdate) (service.Task, error) {
			return svc.UpdateTask(ctx, u.id, u.in)
		},
		Invalidates: []query.Key{taskquery.ListKey},
		OnSuccess:   func(service.Task, taskUpdate) { d.success("Task updated") },
		OnError:     func(err error, _ taskUpdate) { d.failure(err) },
	})
	return d
}

// Task returns the task being edited.
func (d *EditDialog) Task() service.Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.task
}

// Open shows the dialog pre-populated from the task.
func (d *EditDialog) Open() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openLocked() {
		d.values = form.FromTask(d.task)
		d.fieldErrs = nil
		d.mutation.Reset()
	}
}

// Submit validates the form and sends the changed fields.
// On success the dialog closes. On a request error it stays open.
// A form without changes closes without a request.
func (d *EditDialog) Submit(ctx context.Context) (service.Task, error) {
	d.mu.Lock()
	orig := d.task
	d.mu.Unlock()

	u, err := prepare(&d.formDialog, func(v form.Values) (taskUpdate, error) {
		in, err := v.ToUpdate(orig)
		return taskUpdate{id: orig.ID, in: in}, err
	})
	if err != nil {
		return service.Task{}, err
	}
	if u.in.IsEmpty() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.settleLocked(nil)
		return d.task, nil
	}

	task, err := d.mutation.Mutate(ctx, u)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.settleLocked(err)
	if err != nil {
		return service.Task{}, err
	}
	d.task = task
	return task, nil
}
