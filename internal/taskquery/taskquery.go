// Package taskquery binds task reads to the query cache.
package taskquery

import (
	"context"

	"taskdesk/internal/query"
	"taskdesk/internal/service"
)

// DefaultPageSize matches the server's default list limit.
const DefaultPageSize = 100

// ListKey is the cache key of the task list. Every task mutation invalidates it.
var ListKey = query.Key{"tasks"}

// TaskKey is the cache key of a single task.
func TaskKey(id string) query.Key {
	return query.Key{"tasks", id}
}

// FetchList loads the first page of tasks into the cache.
func FetchList(ctx context.Context, qc *query.Client, svc service.Service, limit int) query.Entry {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return qc.Fetch(ctx, ListKey, func(ctx context.Context) (any, error) {
		return svc.ListTasks(ctx, 0, limit)
	})
}

// FetchTask loads one task into the cache.
func FetchTask(ctx context.Context, qc *query.Client, svc service.Service, id string) query.Entry {
	return qc.Fetch(ctx, TaskKey(id), func(ctx context.Context) (any, error) {
		return svc.GetTask(ctx, id)
	})
}

// List returns the cached task page, if any.
func List(qc *query.Client) (service.TaskPage, bool) {
	e, _ := qc.Get(ListKey)
	return query.Data[service.TaskPage](e)
}
