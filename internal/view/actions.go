package view

import "taskdesk/internal/service"

// Action is an item of the row actions menu.
type Action int

const (
	ActionEdit Action = iota
	ActionDelete
)

func (a Action) String() string {
	if a == ActionDelete {
		return "Delete"
	}
	return "Edit"
}

// Actions lists the menu items in display order.
var Actions = []Action{ActionEdit, ActionDelete}

// ActionsMenu is the per-row menu. Its only state is the highlighted item.
type ActionsMenu struct {
	Task   service.Task
	cursor int
}

// NewActionsMenu opens a menu for task with Edit highlighted.
func NewActionsMenu(task service.Task) *ActionsMenu {
	return &ActionsMenu{Task: task}
}

// Highlighted returns the current item.
func (m *ActionsMenu) Highlighted() Action {
	return Actions[m.cursor]
}

// Next moves the highlight down, wrapping around.
func (m *ActionsMenu) Next() {
	m.cursor = (m.cursor + 1) % len(Actions)
}

// Prev moves the highlight up, wrapping around.
func (m *ActionsMenu) Prev() {
	m.cursor = (m.cursor + len(Actions) - 1) % len(Actions)
}

// Select returns the highlighted action and the task it applies to.
func (m *ActionsMenu) Select() (Action, service.Task) {
	return m.Highlighted(), m.Task
}
