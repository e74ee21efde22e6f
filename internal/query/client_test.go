package query_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"taskdesk/internal/query"
)

var tasksKey = query.Key{"tasks"}

func constFetcher(v any) query.Fetcher {
	return func(ctx context.Context) (any, error) { return v, nil }
}

func TestKey_HasPrefix(t *testing.T) {
	k := query.Key{"tasks", "abc"}
	if !k.HasPrefix(query.Key{"tasks"}) {
		t.Error("expected tasks to be a prefix of tasks/abc")
	}
	if !k.HasPrefix(nil) {
		t.Error("empty key is a prefix of everything")
	}
	if (query.Key{"tasks"}).HasPrefix(k) {
		t.Error("longer key cannot be a prefix")
	}
	if k.HasPrefix(query.Key{"task"}) {
		t.Error("prefix matching is by segment, not by string")
	}
}

func TestClient_GetIdle(t *testing.T) {
	c := query.NewClient()
	e, ok := c.Get(tasksKey)
	if ok {
		t.Error("expected no entry")
	}
	if e.Status != query.StatusIdle {
		t.Errorf("expected idle, got %v", e.Status)
	}
}

func TestClient_FetchStoresData(t *testing.T) {
	c := query.NewClient()
	e := c.Fetch(context.Background(), tasksKey, constFetcher([]string{"a"}))

	if e.Status != query.StatusSuccess {
		t.Fatalf("expected success, got %v", e.Status)
	}
	data, ok := query.Data[[]string](e)
	if !ok || len(data) != 1 || data[0] != "a" {
		t.Errorf("unexpected data: %v", e.Data)
	}
	if e.Fetching || e.Stale {
		t.Errorf("expected settled fresh entry, got fetching=%v stale=%v", e.Fetching, e.Stale)
	}
}

func TestClient_FetchRecordsUpdatedAt(t *testing.T) {
	at := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	c := query.NewClient(query.WithClock(func() time.Time { return at }))

	e := c.Fetch(context.Background(), tasksKey, constFetcher(1))
	if !e.UpdatedAt.Equal(at) {
		t.Errorf("UpdatedAt = %v, want %v", e.UpdatedAt, at)
	}
}

func TestClient_FetchError(t *testing.T) {
	c := query.NewClient()
	boom := errors.New("boom")
	e := c.Fetch(context.Background(), tasksKey, func(ctx context.Context) (any, error) {
		return nil, boom
	})

	if e.Status != query.StatusError {
		t.Fatalf("expected error status, got %v", e.Status)
	}
	if !errors.Is(e.Err, boom) {
		t.Errorf("expected boom, got %v", e.Err)
	}
}

func TestClient_ErrorKeepsPreviousData(t *testing.T) {
	c := query.NewClient()
	c.Fetch(context.Background(), tasksKey, constFetcher("v1"))
	e := c.Fetch(context.Background(), tasksKey, func(ctx context.Context) (any, error) {
		return nil, errors.New("offline")
	})

	if e.Status != query.StatusError {
		t.Fatalf("expected error status, got %v", e.Status)
	}
	if e.Data != "v1" {
		t.Errorf("expected previous data to survive, got %v", e.Data)
	}
}

func TestClient_InvalidateMarksStaleAndNotifies(t *testing.T) {
	c := query.NewClient()
	c.Fetch(context.Background(), tasksKey, constFetcher("v1"))
	c.Fetch(context.Background(), query.Key{"tasks", "1"}, constFetcher("one"))
	c.Fetch(context.Background(), query.Key{"users"}, constFetcher("u"))

	var mu sync.Mutex
	var events []query.Event
	unsubscribe := c.Subscribe(tasksKey, func(ev query.Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})
	defer unsubscribe()

	keys := c.Invalidate(tasksKey)
	if len(keys) != 2 {
		t.Fatalf("expected 2 invalidated keys, got %v", keys)
	}

	for _, k := range []query.Key{tasksKey, {"tasks", "1"}} {
		e, _ := c.Get(k)
		if !e.Stale {
			t.Errorf("expected %v to be stale", k)
		}
		if e.Data == nil {
			t.Errorf("stale entry %v should keep its data", k)
		}
	}
	if e, _ := c.Get(query.Key{"users"}); e.Stale {
		t.Error("users should not be invalidated")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	for _, ev := range events {
		if ev.Kind != query.EventInvalidated {
			t.Errorf("expected invalidated event, got %v", ev.Kind)
		}
	}
}

func TestClient_InvalidateUnknownKey(t *testing.T) {
	c := query.NewClient()
	keys := c.Invalidate(tasksKey)
	if len(keys) != 1 {
		t.Fatalf("expected the prefix itself, got %v", keys)
	}
	e, ok := c.Get(tasksKey)
	if !ok || !e.Stale || e.Status != query.StatusIdle {
		t.Errorf("expected stale idle entry, got %+v (ok=%v)", e, ok)
	}
}

func TestClient_RefetchClearsStale(t *testing.T) {
	c := query.NewClient()
	c.Fetch(context.Background(), tasksKey, constFetcher("v1"))
	c.Invalidate(tasksKey)
	e := c.Fetch(context.Background(), tasksKey, constFetcher("v2"))

	if e.Stale {
		t.Error("expected fresh entry after refetch")
	}
	if e.Data != "v2" {
		t.Errorf("expected v2, got %v", e.Data)
	}
}

func TestClient_SupersededResultDropped(t *testing.T) {
	c := query.NewClient()
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan query.Entry)
	go func() {
		done <- c.Fetch(context.Background(), tasksKey, func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return "old", nil
		})
	}()

	<-started
	c.Invalidate(tasksKey)
	fresh := c.Fetch(context.Background(), tasksKey, constFetcher("new"))
	if fresh.Data != "new" {
		t.Fatalf("expected new data, got %v", fresh.Data)
	}

	close(release)
	old := <-done
	if old.Data != "new" {
		t.Errorf("superseded fetch must not overwrite newer data, got %v", old.Data)
	}

	e, _ := c.Get(tasksKey)
	if e.Data != "new" || e.Fetching {
		t.Errorf("expected settled new entry, got data=%v fetching=%v", e.Data, e.Fetching)
	}
}

func TestClient_Unsubscribe(t *testing.T) {
	c := query.NewClient()
	calls := 0
	unsubscribe := c.Subscribe(tasksKey, func(query.Event) { calls++ })
	unsubscribe()
	unsubscribe()

	c.Invalidate(tasksKey)
	if calls != 0 {
		t.Errorf("expected no calls after unsubscribe, got %d", calls)
	}
}
