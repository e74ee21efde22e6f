// Package ui is the interactive terminal client: the task table, the row
// actions menu, the create/edit/delete dialogs and toasts.
package ui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskdesk/internal/dialog"
	"taskdesk/internal/query"
	"taskdesk/internal/service"
	"taskdesk/internal/taskquery"
	"taskdesk/internal/toast"
	"taskdesk/internal/view"
)

// ToastTTL is how long a notification stays on screen.
const ToastTTL = 4 * time.Second

// Options configures the interactive client.
type Options struct {
	Service  service.Service
	Query    *query.Client
	PageSize int
	Logger   *slog.Logger

	// Input and Output default to the process terminal.
	Input  io.Reader
	Output io.Writer
}

type (
	// listFetchedMsg is sent when a list fetch settles; the result is in the cache.
	listFetchedMsg struct{}

	// invalidatedMsg is sent when the list key was invalidated.
	invalidatedMsg struct{}

	toastTickMsg time.Time
)

// Model is the bubbletea model of the task screen.
type Model struct {
	ctx      context.Context
	cancel   context.CancelFunc
	svc      service.Service
	qc       *query.Client
	pageSize int
	logger   *slog.Logger

	toasts  *toast.Queue
	spinner spinner.Model
	invalid chan struct{}
	unsub   func()

	cursor int
	menu   *view.ActionsMenu
	form   *formModal
	del    *deleteModal

	width int
}

// New builds the model and subscribes it to list invalidations.
// Call Close when done.
func New(ctx context.Context, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ctx, cancel := context.WithCancel(ctx)
	m := &Model{
		ctx:      ctx,
		cancel:   cancel,
		svc:      opts.Service,
		qc:       opts.Query,
		pageSize: opts.PageSize,
		logger:   logger,
		toasts:   toast.NewQueue(),
		spinner:  sp,
		invalid:  make(chan struct{}, 1),
	}
	m.unsub = m.qc.Subscribe(taskquery.ListKey, func(ev query.Event) {
		if ev.Kind != query.EventInvalidated {
			return
		}
		select {
		case m.invalid <- struct{}{}:
		default:
		}
	})
	return m
}

// Close removes the cache subscription and stops pending commands.
func (m *Model) Close() {
	m.unsub()
	m.cancel()
}

// Run starts the full-screen client and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)
	defer m.Close()

	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}
	_, err := tea.NewProgram(m, progOpts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.waitInvalidated(), m.spinner.Tick, tickToasts())
}

// fetch loads the list into the cache.
func (m *Model) fetch() tea.Cmd {
	return func() tea.Msg {
		taskquery.FetchList(m.ctx, m.qc, m.svc, m.pageSize)
		return listFetchedMsg{}
	}
}

// waitInvalidated turns the next invalidation into a message.
// It returns nil once the model is closed.
func (m *Model) waitInvalidated() tea.Cmd {
	ch, done := m.invalid, m.ctx.Done()
	return func() tea.Msg {
		select {
		case <-ch:
			return invalidatedMsg{}
		case <-done:
			return nil
		}
	}
}

func tickToasts() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return toastTickMsg(t) })
}

// list is the current derived list state.
func (m *Model) list() view.List {
	e, _ := m.qc.Get(taskquery.ListKey)
	return view.Derive(e)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case listFetchedMsg:
		m.clampCursor()
		return m, nil

	case invalidatedMsg:
		m.logger.Debug("task list invalidated, refetching")
		return m, tea.Batch(m.fetch(), m.waitInvalidated())

	case submittedMsg:
		return m, m.settle(msg.err)

	case toastTickMsg:
		m.toasts.Expire(ToastTTL)
		return m, tickToasts()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case m.form != nil:
			cmd, closed := m.form.update(m.ctx, msg)
			if closed {
				m.form = nil
			}
			return m, cmd
		case m.del != nil:
			cmd, closed := m.del.update(m.ctx, msg)
			if closed {
				m.del = nil
			}
			return m, cmd
		case m.menu != nil:
			return m, m.updateMenu(msg)
		}
		return m, m.updateList(msg)
	}
	return m, nil
}

// settle drops a modal whose dialog closed after its request.
func (m *Model) settle(err error) tea.Cmd {
	if errors.Is(err, query.ErrPending) {
		return nil
	}
	if m.form != nil && !m.form.d.IsOpen() {
		m.form = nil
	}
	if m.del != nil && !m.del.d.IsOpen() {
		m.del = nil
	}
	return nil
}

func (m *Model) updateList(msg tea.KeyMsg) tea.Cmd {
	rows := m.list().Rows
	switch msg.String() {
	case "q", "esc":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
	case "n", "a":
		return m.openCreate()
	case "r":
		m.qc.Invalidate(taskquery.ListKey)
	case "x":
		if t, ok := m.toasts.Latest(); ok {
			m.toasts.Dismiss(t.ID)
		}
	case "enter", "m":
		if task, ok := m.selected(rows); ok {
			m.menu = view.NewActionsMenu(task)
		}
	case "e":
		if task, ok := m.selected(rows); ok {
			return m.openEdit(task)
		}
	case "d":
		if task, ok := m.selected(rows); ok {
			m.openDelete(task)
		}
	}
	return nil
}

func (m *Model) updateMenu(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q":
		m.menu = nil
	case "up", "k":
		m.menu.Prev()
	case "down", "j", "tab":
		m.menu.Next()
	case "e":
		task := m.menu.Task
		m.menu = nil
		return m.openEdit(task)
	case "d":
		task := m.menu.Task
		m.menu = nil
		m.openDelete(task)
	case "enter":
		action, task := m.menu.Select()
		m.menu = nil
		if action == view.ActionDelete {
			m.openDelete(task)
			return nil
		}
		return m.openEdit(task)
	}
	return nil
}

func (m *Model) selected(rows []view.Row) (service.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(rows) {
		return service.Task{}, false
	}
	return rows[m.cursor].Task, true
}

func (m *Model) clampCursor() {
	n := len(m.list().Rows)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) openCreate() tea.Cmd {
	d := dialog.NewCreate(m.svc, m.qc, m.toasts)
	d.Open()
	m.form = newFormModal("New task", "Create", d)
	return nil
}

func (m *Model) openEdit(task service.Task) tea.Cmd {
	d := dialog.NewEdit(task, m.svc, m.qc, m.toasts)
	d.Open()
	m.form = newFormModal("Edit task", "Save", d)
	return nil
}

func (m *Model) openDelete(task service.Task) {
	d := dialog.NewDelete(task, m.svc, m.qc, m.toasts)
	d.Open()
	m.del = &deleteModal{d: d}
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Tasks"))

	l := m.list()
	if l.Refreshing {
		b.WriteString(" " + m.spinner.View())
	}
	b.WriteString("\n\n")

	switch {
	case m.form != nil:
		b.WriteString(m.form.view())
	case m.del != nil:
		b.WriteString(m.del.view())
	default:
		b.WriteString(m.listView(l))
		if m.menu != nil {
			b.WriteString("\n" + menuView(m.menu))
		}
	}

	if t, ok := m.toasts.Latest(); ok {
		b.WriteString("\n\n" + renderToast(t))
	}
	b.WriteString("\n\n" + faintStyle.Render(m.footer()))
	if m.width > 0 {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(b.String())
	}
	return b.String()
}

func (m *Model) listView(l view.List) string {
	switch l.Kind {
	case view.Loading:
		return m.spinner.View() + " " + view.LoadingText
	case view.Error:
		return errorStyle.Render(view.ErrorText(l.Message))
	}
	var banner string
	if l.Message != "" {
		banner = errorStyle.Render(view.ErrorText(l.Message)) + "\n\n"
	}
	if l.Kind == view.Empty {
		return banner + view.EmptyPrompt
	}
	return banner + renderTable(l.Rows, m.cursor)
}

func menuView(menu *view.ActionsMenu) string {
	var b strings.Builder
	for _, a := range view.Actions {
		if a == menu.Highlighted() {
			b.WriteString(activeButton.Render(a.String()))
		} else {
			b.WriteString(buttonStyle.Render(a.String()))
		}
		b.WriteString(" ")
	}
	return modalStyle.Render(titleStyle.Render(menu.Task.Title) + "\n\n" + b.String())
}

func (m *Model) footer() string {
	switch {
	case m.form != nil, m.del != nil:
		return "ctrl+c quit"
	case m.menu != nil:
		return "↑/↓ choose • enter select • esc close"
	}
	return "n new • enter actions • e edit • d delete • r refresh • x dismiss • q quit"
}
