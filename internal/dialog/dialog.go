// Package dialog implements the modal task dialogs as small state machines.
//
// Every dialog moves through closed -> open -> submitting -> closed on
// success, or -> failed on a request error. A failed dialog stays open
// with its form intact and can be submitted again.
package dialog

import (
	"errors"
	"fmt"
	"sync"

	"taskdesk/internal/query"
	"taskdesk/internal/service"
	"taskdesk/internal/toast"
)

// State is the lifecycle state of a dialog.
type State int

const (
	Closed State = iota
	Open
	Submitting
	Failed
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case Submitting:
		return "submitting"
	case Failed:
		return "error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	// ErrClosed is returned when submitting a dialog that is not open.
	ErrClosed = errors.New("dialog is not open")

	// ErrInvalid wraps a *form.ValidationError when local validation fails.
	ErrInvalid = errors.New("form is invalid")
)

// Dialog is the part every modal shares.
type Dialog interface {
	State() State
	IsOpen() bool
	// Close dismisses the dialog. It returns query.ErrPending while submitting.
	Close() error
	// RequestError is the message of the last failed request, if any.
	RequestError() string
}

// machine holds the shared open/submit state.
type machine struct {
	mu       sync.Mutex
	state    State
	reqErr   string
	notifier toast.Notifier
}

func (m *machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *machine) IsOpen() bool {
	return m.State() != Closed
}

func (m *machine) RequestError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reqErr
}

func (m *machine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Submitting {
		return query.ErrPending
	}
	m.state = Closed
	m.reqErr = ""
	return nil
}

// openLocked moves a closed dialog to open and reports whether it did.
func (m *machine) openLocked() bool {
	if m.state != Closed {
		return false
	}
	m.state = Open
	m.reqErr = ""
	return true
}

// beginLocked checks that a submit may start.
func (m *machine) beginLocked() error {
	switch m.state {
	case Closed:
		return ErrClosed
	case Submitting:
		return query.ErrPending
	}
	return nil
}

// settle records the outcome of a request.
func (m *machine) settleLocked(err error) {
	if err != nil {
		m.state = Failed
		m.reqErr = service.ErrorMessage(err)
		return
	}
	m.state = Closed
	m.reqErr = ""
}

func (m *machine) success(msg string) {
	if m.notifier != nil {
		m.notifier.Success(msg)
	}
}

func (m *machine) failure(err error) {
	if m.notifier != nil {
		m.notifier.Error(service.ErrorMessage(err))
	}
}
