package ui

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskdesk/internal/dialog"
	"taskdesk/internal/form"
	"taskdesk/internal/query"
	"taskdesk/internal/service"
)

// submittedMsg reports the outcome of a dialog request.
type submittedMsg struct {
	err error
}

// taskForm is what the create and edit dialogs have in common.
type taskForm interface {
	dialog.Dialog
	Values() form.Values
	SetValues(form.Values)
	FieldErrors() *form.ValidationError
	CanSubmit(form.Values) bool
	Submit(ctx context.Context) (service.Task, error)
}

type field int

const (
	fieldTitle field = iota
	fieldDescription
	fieldPriority
	fieldStatus
	fieldDue
	fieldSubmit
	fieldCount
)

// formModal renders a task form dialog.
type formModal struct {
	heading  string
	submit   string
	d        taskForm
	focus    field
	title    textinput.Model
	desc     textarea.Model
	due      textinput.Model
	priority int
	status   int
	rawPrio  service.Priority
	rawStat  service.Status
}

func newFormModal(heading, submit string, d taskForm) *formModal {
	v := d.Values()

	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 0
	title.Width = 48
	title.SetValue(v.Title)
	title.Focus()

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.ShowLineNumbers = false
	desc.SetWidth(50)
	desc.SetHeight(3)
	desc.SetValue(v.Description)

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD"
	due.CharLimit = 10
	due.Width = 12
	due.SetValue(v.DueDate)

	return &formModal{
		heading:  heading,
		submit:   submit,
		d:        d,
		title:    title,
		desc:     desc,
		due:      due,
		priority: slices.Index(service.Priorities, service.Priority(v.Priority)),
		status:   slices.Index(service.Statuses, service.Status(v.Status)),
		rawPrio:  service.Priority(v.Priority),
		rawStat:  service.Status(v.Status),
	}
}

// values reads the widgets into form values.
func (f *formModal) values() form.Values {
	return form.Values{
		Title:       f.title.Value(),
		Description: f.desc.Value(),
		Priority:    string(f.selectedPriority()),
		Status:      string(f.selectedStatus()),
		DueDate:     f.due.Value(),
	}
}

// selectedPriority is the chosen priority. An index of -1 keeps the value
// the task was loaded with.
func (f *formModal) selectedPriority() service.Priority {
	if f.priority < 0 {
		return f.rawPrio
	}
	return service.Priorities[f.priority]
}

func (f *formModal) selectedStatus() service.Status {
	if f.status < 0 {
		return f.rawStat
	}
	return service.Statuses[f.status]
}

func (f *formModal) setFocus(to field) tea.Cmd {
	f.focus = (to + fieldCount) % fieldCount
	f.title.Blur()
	f.desc.Blur()
	f.due.Blur()
	switch f.focus {
	case fieldTitle:
		return f.title.Focus()
	case fieldDescription:
		return f.desc.Focus()
	case fieldDue:
		return f.due.Focus()
	}
	return nil
}

// update handles a key. It returns a command and whether the modal was closed.
func (f *formModal) update(ctx context.Context, msg tea.KeyMsg) (tea.Cmd, bool) {
	submitting := f.d.State() == dialog.Submitting
	switch msg.String() {
	case "esc":
		if err := f.d.Close(); errors.Is(err, query.ErrPending) {
			return nil, false
		}
		return nil, true
	case "tab":
		return f.setFocus(f.focus + 1), false
	case "shift+tab":
		return f.setFocus(f.focus - 1), false
	case "ctrl+s":
		return f.trySubmit(ctx), false
	case "enter":
		if f.focus == fieldSubmit {
			return f.trySubmit(ctx), false
		}
		if f.focus != fieldDescription {
			return f.setFocus(f.focus + 1), false
		}
	case "left", "right":
		delta := 1
		if msg.String() == "left" {
			delta = -1
		}
		switch f.focus {
		case fieldPriority:
			f.priority = cycle(f.priority, delta, len(service.Priorities))
			return nil, false
		case fieldStatus:
			f.status = cycle(f.status, delta, len(service.Statuses))
			return nil, false
		}
	}
	if submitting {
		return nil, false
	}

	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDescription:
		f.desc, cmd = f.desc.Update(msg)
	case fieldDue:
		f.due, cmd = f.due.Update(msg)
	}
	return cmd, false
}

// trySubmit pushes the widget values into the dialog and starts the request.
// Invalid forms are submitted too, so the dialog records the field errors
// without sending anything.
func (f *formModal) trySubmit(ctx context.Context) tea.Cmd {
	if f.d.State() == dialog.Submitting {
		return nil
	}
	f.d.SetValues(f.values())
	d := f.d
	return func() tea.Msg {
		_, err := d.Submit(ctx)
		return submittedMsg{err: err}
	}
}

func (f *formModal) view() string {
	v := f.values()
	errs := f.d.FieldErrors()
	submittable := f.d.CanSubmit(v)

	var b strings.Builder
	b.WriteString(titleStyle.Render(f.heading) + "\n\n")
	f.row(&b, fieldTitle, "Title", f.title.View(), errs.For("title"))
	f.row(&b, fieldDescription, "Description", f.desc.View(), errs.For("description"))
	prio, stat := f.selectedPriority(), f.selectedStatus()
	f.row(&b, fieldPriority, "Priority", selectView(prio.Label(), prio.Color()), errs.For("priority"))
	f.row(&b, fieldStatus, "Status", selectView(stat.Label(), stat.Color()), errs.For("status"))
	f.row(&b, fieldDue, "Due date", f.due.View(), errs.For("due_date"))

	label := f.submit
	if f.d.State() == dialog.Submitting {
		label = "Saving..."
	}
	switch {
	case !submittable:
		b.WriteString(disabledButton.Render(label))
	case f.focus == fieldSubmit:
		b.WriteString(activeButton.Render(label))
	default:
		b.WriteString(buttonStyle.Render(label))
	}
	if msg := f.d.RequestError(); msg != "" {
		b.WriteString("\n\n" + errorStyle.Render(msg))
	}
	b.WriteString("\n\n" + faintStyle.Render("tab next field • ←/→ change choice • ctrl+s save • esc cancel"))
	return modalStyle.Render(b.String())
}

func (f *formModal) row(b *strings.Builder, fld field, label, widget, errMsg string) {
	if f.focus == fld {
		label = focusedLabel.Render(label)
	}
	b.WriteString(label + "\n" + widget + "\n")
	if errMsg != "" {
		b.WriteString(errorStyle.Render(errMsg) + "\n")
	}
	b.WriteString("\n")
}

func selectView(label string, c service.Color) string {
	if label == "" {
		label = "unset"
	}
	return "‹ " + badge(label, c) + " ›"
}

func cycle(i, delta, n int) int {
	if i < 0 {
		if delta > 0 {
			return 0
		}
		return n - 1
	}
	return (i + delta + n) % n
}

// deleteModal renders the delete confirmation.
type deleteModal struct {
	d *dialog.DeleteDialog
}

func (m *deleteModal) update(ctx context.Context, msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "esc", "n":
		if err := m.d.Close(); errors.Is(err, query.ErrPending) {
			return nil, false
		}
		return nil, true
	case "y", "enter":
		if m.d.State() == dialog.Submitting {
			return nil, false
		}
		d := m.d
		return func() tea.Msg {
			return submittedMsg{err: d.Confirm(ctx)}
		}, false
	}
	return nil, false
}

func (m *deleteModal) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Delete task") + "\n\n")
	b.WriteString(m.d.Prompt() + "\n\n")
	if m.d.State() == dialog.Submitting {
		b.WriteString(disabledButton.Render("Deleting..."))
	} else {
		b.WriteString(activeButton.Render("Delete") + " " + buttonStyle.Render("Cancel"))
	}
	if msg := m.d.RequestError(); msg != "" {
		b.WriteString("\n\n" + errorStyle.Render(msg))
	}
	b.WriteString("\n\n" + faintStyle.Render("y confirm • n/esc cancel"))
	return modalStyle.Render(b.String())
}
