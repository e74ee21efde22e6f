// Package toast holds short-lived user notifications.
package toast

import (
	"sync"
	"time"
)

// Kind is the type of a notification.
type Kind int

const (
	Success Kind = iota
	Error
)

func (k Kind) String() string {
	if k == Error {
		return "error"
	}
	return "success"
}

// Toast is one notification.
type Toast struct {
	ID        int
	Kind      Kind
	Message   string
	CreatedAt time.Time
}

// Notifier receives notifications.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Queue is an in-memory Notifier whose entries stay until dismissed.
// It is safe for concurrent use.
type Queue struct {
	mu     sync.Mutex
	items  []Toast
	nextID int
	now    func() time.Time
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{nextID: 1, now: time.Now}
}

// Success adds a success notification.
func (q *Queue) Success(msg string) { q.push(Success, msg) }

// Error adds an error notification.
func (q *Queue) Error(msg string) { q.push(Error, msg) }

func (q *Queue) push(kind Kind, msg string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, Toast{ID: q.nextID, Kind: kind, Message: msg, CreatedAt: q.now()})
	q.nextID++
}

// All returns the active notifications, oldest first.
func (q *Queue) All() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Toast, len(q.items))
	copy(out, q.items)
	return out
}

// Latest returns the newest notification.
func (q *Queue) Latest() (Toast, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Toast{}, false
	}
	return q.items[len(q.items)-1], true
}

// Dismiss removes the notification with the given id.
func (q *Queue) Dismiss(id int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, t := range q.items {
		if t.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Expire removes notifications older than ttl and reports how many were removed.
func (q *Queue) Expire(ttl time.Duration) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	cutoff := q.now().Add(-ttl)
	kept := q.items[:0]
	for _, t := range q.items {
		if t.CreatedAt.After(cutoff) {
			kept = append(kept, t)
		}
	}
	removed := len(q.items) - len(kept)
	q.items = kept
	return removed
}
