package query

import (
	"context"
	"errors"
	"sync"
)

// ErrPending is returned by Mutate while a previous call is still running.
var ErrPending = errors.New("mutation already in progress")

// MutationStatus is the lifecycle state of a Mutation.
type MutationStatus int

const (
	MutationIdle MutationStatus = iota
	MutationPending
	MutationSuccess
	MutationError
)

// MutationOptions configures a Mutation.
type MutationOptions[In, Out any] struct {
	// Fn performs the write.
	Fn func(ctx context.Context, in In) (Out, error)

	// Invalidates lists the keys invalidated when the mutation settles,
	// whether it succeeded or failed.
	Invalidates []Key

	OnSuccess func(out Out, in In)
	OnError   func(err error, in In)
	// OnSettled runs last, after invalidation.
	OnSettled func(out Out, err error, in In)
}

// Mutation wraps a single write operation and its lifecycle.
// At most one call runs at a time.
type Mutation[In, Out any] struct {
	client *Client
	opts   MutationOptions[In, Out]

	mu     sync.Mutex
	status MutationStatus
	data   Out
	err    error
}

// NewMutation creates a mutation bound to the cache it invalidates.
func NewMutation[In, Out any](c *Client, opts MutationOptions[In, Out]) *Mutation[In, Out] {
	return &Mutation[In, Out]{client: c, opts: opts}
}

// Mutate runs the write. It returns ErrPending without calling Fn if a
// previous call has not settled.
func (m *Mutation[In, Out]) Mutate(ctx context.Context, in In) (Out, error) {
	var zero Out

	m.mu.Lock()
	if m.status == MutationPending {
		m.mu.Unlock()
		return zero, ErrPending
	}
	m.status = MutationPending
	m.err = nil
	m.mu.Unlock()

	out, err := m.opts.Fn(ctx, in)

	m.mu.Lock()
	if err != nil {
		m.status = MutationError
		m.err = err
		m.data = zero
	} else {
		m.status = MutationSuccess
		m.data = out
	}
	m.mu.Unlock()

	if err != nil {
		if m.opts.OnError != nil {
			m.opts.OnError(err, in)
		}
	} else if m.opts.OnSuccess != nil {
		m.opts.OnSuccess(out, in)
	}

	if m.client != nil {
		for _, key := range m.opts.Invalidates {
			m.client.Invalidate(key)
		}
	}

	if m.opts.OnSettled != nil {
		m.opts.OnSettled(out, err, in)
	}
	return out, err
}

// Status returns the current lifecycle state.
func (m *Mutation[In, Out]) Status() MutationStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Err returns the error from the last settled call.
func (m *Mutation[In, Out]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Reset returns a settled mutation to idle. It has no effect while pending.
func (m *Mutation[In, Out]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == MutationPending {
		return
	}
	var zero Out
	m.status = MutationIdle
	m.data = zero
	m.err = nil
}
