// Package view derives what the task list shows from the list query, and
// the per-row actions menu.
package view

import (
	"fmt"
	"io"

	"taskdesk/internal/output"
	"taskdesk/internal/query"
	"taskdesk/internal/service"
)

// Kind is which of the mutually exclusive list states is shown.
type Kind int

const (
	Loading Kind = iota
	Error
	Empty
	Rows
)

func (k Kind) String() string {
	switch k {
	case Loading:
		return "loading"
	case Error:
		return "error"
	case Empty:
		return "empty"
	case Rows:
		return "rows"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// User-facing texts of the list states.
const (
	LoadingText = "Loading tasks..."
	EmptyPrompt = `No tasks yet. Press "n" (or run "taskdesk add") to create the first one.`
)

// ErrorText is the line shown when the list failed to load.
func ErrorText(msg string) string {
	return "failed to load tasks: " + msg
}

// Row is one table row.
type Row struct {
	Task  service.Task
	Cells []string
}

// NewRow builds the row for a task.
func NewRow(task service.Task) Row {
	return Row{Task: task, Cells: output.Cells(task)}
}

// List is the derived state of the task list.
type List struct {
	Kind Kind
	// Message is set for Error, and for Rows or Empty when the latest
	// refetch failed.
	Message string
	Rows    []Row
	// Refreshing is true when rows are shown while a refetch is in flight
	// or pending after invalidation.
	Refreshing bool
}

// Derive computes the list state from the list query entry.
// A failed refetch keeps the last rows and carries the error in Message.
func Derive(e query.Entry) List {
	page, ok := query.Data[service.TaskPage](e)
	switch {
	case ok:
		var msg string
		if e.Status == query.StatusError {
			msg = service.ErrorMessage(e.Err)
		}
		if len(page.Data) == 0 {
			return List{Kind: Empty, Message: msg, Refreshing: e.Fetching || e.Stale}
		}
		rows := make([]Row, len(page.Data))
		for i, t := range page.Data {
			rows[i] = NewRow(t)
		}
		return List{Kind: Rows, Message: msg, Rows: rows, Refreshing: e.Fetching || e.Stale}
	case e.Status == query.StatusError:
		return List{Kind: Error, Message: service.ErrorMessage(e.Err)}
	}
	return List{Kind: Loading}
}

// Tasks returns the tasks of the shown rows, in order.
func (l List) Tasks() []service.Task {
	tasks := make([]service.Task, len(l.Rows))
	for i, r := range l.Rows {
		tasks[i] = r.Task
	}
	return tasks
}

// Render writes the plain-text rendition of the list.
func Render(w io.Writer, l List) error {
	if l.Kind != Error && l.Message != "" {
		if _, err := fmt.Fprintln(w, ErrorText(l.Message)); err != nil {
			return err
		}
	}
	switch l.Kind {
	case Loading:
		_, err := fmt.Fprintln(w, LoadingText)
		return err
	case Error:
		_, err := fmt.Fprintln(w, ErrorText(l.Message))
		return err
	case Empty:
		_, err := fmt.Fprintln(w, EmptyPrompt)
		return err
	}
	return output.WriteTable(w, l.Tasks())
}
