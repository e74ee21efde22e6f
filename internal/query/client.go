// Package query is a client-side cache for read results keyed by query identity.
//
// Readers call Fetch to populate an entry and Get to read a snapshot.
// Writers call Invalidate after a mutation; invalidation marks matching
// entries stale and notifies subscribers, which are expected to refetch.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key identifies a query. Keys are hierarchical: ["tasks"] is a prefix of ["tasks", id].
type Key []string

func (k Key) String() string {
	return strings.Join(k, "/")
}

// HasPrefix reports whether p is a prefix of k.
func (k Key) HasPrefix(p Key) bool {
	if len(p) > len(k) {
		return false
	}
	for i := range p {
		if k[i] != p[i] {
			return false
		}
	}
	return true
}

// Status is the state of a cache entry's data.
type Status int

const (
	// StatusIdle means the entry has never been fetched.
	StatusIdle Status = iota
	// StatusLoading means the first fetch is in flight and there is no data yet.
	StatusLoading
	// StatusSuccess means Data holds the latest successful result.
	StatusSuccess
	// StatusError means the latest fetch failed.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Entry is a snapshot of one cached query.
type Entry struct {
	Key    Key
	Status Status
	Data   any
	Err    error
	// Stale is set by Invalidate and cleared by the next stored result.
	Stale bool
	// Fetching is true while at least one fetch for the key is in flight.
	Fetching  bool
	UpdatedAt time.Time
}

// HasData reports whether the entry holds a result from a successful fetch.
func (e Entry) HasData() bool {
	return e.Data != nil
}

// EventKind says what happened to an entry.
type EventKind int

const (
	EventUpdated EventKind = iota
	EventInvalidated
)

// Event is delivered to subscribers.
type Event struct {
	Key  Key
	Kind EventKind
}

// Fetcher loads the data for a key.
type Fetcher func(ctx context.Context) (any, error)

type entry struct {
	snap     Entry
	gen      uint64
	inflight int
}

type subscriber struct {
	prefix Key
	fn     func(Event)
}

// Client holds the cache. It is safe for concurrent use.
type Client struct {
	mu      sync.Mutex
	entries map[string]*entry
	subs    map[int]subscriber
	nextSub int
	flights singleflight.Group
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger for cache events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides time.Now (for testing).
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates an empty cache.
func NewClient(opts ...Option) *Client {
	c := &Client{
		entries: make(map[string]*entry),
		subs:    make(map[int]subscriber),
		logger:  slog.New(slog.DiscardHandler),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a snapshot of the entry for key.
// The second result is false if the key has never been fetched or invalidated.
func (c *Client) Get(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return Entry{Key: key, Status: StatusIdle}, false
	}
	return e.snap, true
}

// Fetch runs fn for key and stores its result.
//
// Concurrent fetches of the same key share one call to the backend.
// A result is stored only if no newer fetch or invalidation happened
// while it was in flight; otherwise it is dropped and the returned
// snapshot reflects the newer state.
func (c *Client) Fetch(ctx context.Context, key Key, fn Fetcher) Entry {
	id := key.String()

	c.mu.Lock()
	e := c.entryLocked(key)
	e.gen++
	gen := e.gen
	e.inflight++
	e.snap.Fetching = true
	if e.snap.Status == StatusIdle || (e.snap.Status == StatusError && !e.snap.HasData()) {
		e.snap.Status = StatusLoading
	}
	c.mu.Unlock()

	c.logger.Debug("query fetch", "key", id, "gen", gen)
	c.notify(Event{Key: key, Kind: EventUpdated})

	data, err, _ := c.flights.Do(id, func() (any, error) {
		return fn(ctx)
	})

	c.mu.Lock()
	e.inflight--
	e.snap.Fetching = e.inflight > 0
	superseded := gen < e.gen
	if !superseded {
		if err != nil {
			e.snap.Status = StatusError
			e.snap.Err = err
		} else {
			e.snap.Status = StatusSuccess
			e.snap.Data = data
			e.snap.Err = nil
		}
		e.snap.Stale = false
		e.snap.UpdatedAt = c.now()
	}
	snap := e.snap
	c.mu.Unlock()

	if superseded {
		c.logger.Debug("query result superseded", "key", id, "gen", gen)
	} else if err != nil {
		c.logger.Debug("query fetch failed", "key", id, "error", err)
	}
	c.notify(Event{Key: key, Kind: EventUpdated})
	return snap
}

// Invalidate marks every entry under prefix stale and notifies subscribers.
// In-flight fetches for those entries will not store their results.
// Returns the keys that were invalidated.
func (c *Client) Invalidate(prefix Key) []Key {
	c.mu.Lock()
	var keys []Key
	for id, e := range c.entries {
		if !e.snap.Key.HasPrefix(prefix) {
			continue
		}
		e.gen++
		e.snap.Stale = true
		c.flights.Forget(id)
		keys = append(keys, e.snap.Key)
	}
	if len(keys) == 0 {
		// Nothing cached yet. Record the prefix itself so a later reader
		// knows it must fetch.
		e := c.entryLocked(prefix)
		e.snap.Stale = true
		keys = append(keys, prefix)
	}
	c.mu.Unlock()

	c.logger.Debug("query invalidate", "prefix", prefix.String(), "keys", len(keys))
	for _, k := range keys {
		c.notify(Event{Key: k, Kind: EventInvalidated})
	}
	return keys
}

// Subscribe registers fn for events on keys under prefix.
// fn runs on the goroutine that caused the event and must not block.
// The returned function removes the subscription.
func (c *Client) Subscribe(prefix Key, fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = subscriber{prefix: prefix, fn: fn}
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

func (c *Client) entryLocked(key Key) *entry {
	id := key.String()
	e, ok := c.entries[id]
	if !ok {
		e = &entry{snap: Entry{Key: append(Key(nil), key...), Status: StatusIdle}}
		c.entries[id] = e
	}
	return e
}

func (c *Client) notify(ev Event) {
	c.mu.Lock()
	var fns []func(Event)
	for _, s := range c.subs {
		if ev.Key.HasPrefix(s.prefix) {
			fns = append(fns, s.fn)
		}
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Data returns the entry's data as T.
func Data[T any](e Entry) (T, bool) {
	v, ok := e.Data.(T)
	return v, ok
}
