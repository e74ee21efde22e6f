// Package googletasks implements the service.Service interface using Google Tasks API.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"taskdesk/internal/config"
	"taskdesk/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per API page.
	PageSize = 100

	// APITimeout is the default timeout for API calls.
	APITimeout = 5 * time.Second

	// OAuth scope for Google Tasks
	tasksScope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Client implements service.Service using Google Tasks API.
// All tasks live in the user's default list.
type Client struct {
	svc     *tasks.Service
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist in the config directory.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if !cfg.HasToken() {
		return nil, fmt.Errorf("%w: no token.json in %s", service.ErrUnauthorized, cfg.Dir)
	}

	// Load OAuth client config
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}

	// Load token
	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}

	// Create token source that auto-refreshes
	tokenSource := oauthConfig.TokenSource(ctx, &token)
	httpClient := oauth2.NewClient(ctx, tokenSource)

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return newClient(svc, cfg.Timeout, logger), nil
}

// NewWithHTTPClient creates a client with a custom HTTP client and
// endpoint (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint string) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return newClient(svc, APITimeout, nil), nil
}

func newClient(svc *tasks.Service, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = APITimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{svc: svc, timeout: timeout, logger: logger}
}

// ListTasks returns tasks of the default list in API order, including
// completed and hidden ones. skip and limit apply to that order.
func (c *Client) ListTasks(ctx context.Context, skip, limit int) (service.TaskPage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var all []service.Task
	err := c.svc.Tasks.List(DefaultListID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				all = append(all, toTask(t))
			}
			return nil
		})
	if err != nil {
		return service.TaskPage{}, wrapError(err)
	}
	c.logger.Debug("googletasks list", "tasks", len(all))

	if skip < 0 {
		skip = 0
	}
	if skip > len(all) {
		skip = len(all)
	}
	end := len(all)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	data := append([]service.Task{}, all[skip:end]...)
	return service.TaskPage{Data: data, Count: len(data)}, nil
}

// GetTask returns one task.
func (c *Client) GetTask(ctx context.Context, id string) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	t, err := c.svc.Tasks.Get(DefaultListID, id).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return toTask(t), nil
}

// CreateTask inserts a task into the default list.
func (c *Client) CreateTask(ctx context.Context, in service.TaskCreate) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	t := fromTask(service.Task{
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      in.Status,
		DueDate:     in.DueDate,
	})
	created, err := c.svc.Tasks.Insert(DefaultListID, t).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return toTask(created), nil
}

// UpdateTask reads the task, applies in, and writes the full record back.
func (c *Client) UpdateTask(ctx context.Context, id string, in service.TaskUpdate) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cur, err := c.svc.Tasks.Get(DefaultListID, id).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	next := fromTask(in.Apply(toTask(cur)))
	next.Id = cur.Id
	next.Etag = cur.Etag

	updated, err := c.svc.Tasks.Update(DefaultListID, id, next).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return toTask(updated), nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(DefaultListID, id).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// toTask maps a Google task. Google Tasks has no creation time, so the
// last update time fills CreatedAt.
func toTask(t *tasks.Task) service.Task {
	desc, meta := splitNotes(t.Notes)
	task := service.Task{
		ID:          t.Id,
		Title:       t.Title,
		Description: desc,
		Priority:    meta.priority,
		Status:      meta.status,
	}
	if task.Priority == "" {
		task.Priority = service.DefaultPriority
	}

	switch {
	case t.Status == statusCompleted && task.Status != service.StatusCancelled:
		task.Status = service.StatusDone
	case t.Status != statusCompleted && (task.Status == service.StatusDone || task.Status == service.StatusCancelled || task.Status == ""):
		task.Status = service.StatusTodo
	}

	if t.Due != "" {
		if d, err := time.Parse(time.RFC3339, t.Due); err == nil {
			d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
			task.DueDate = &d
		}
	}
	if u, err := time.Parse(time.RFC3339, t.Updated); err == nil {
		task.CreatedAt = u
		task.UpdatedAt = u
	}
	return task
}

// fromTask builds the Google task body. Done and cancelled are both
// "completed"; the metadata line tells them apart.
func fromTask(task service.Task) *tasks.Task {
	t := &tasks.Task{
		Title:  task.Title,
		Notes:  joinNotes(task.Description, noteMeta{priority: task.Priority, status: task.Status}),
		Status: statusNeedsAction,
	}
	if task.Status == service.StatusDone || task.Status == service.StatusCancelled {
		t.Status = statusCompleted
	}
	if task.DueDate != nil {
		t.Due = task.DueDate.UTC().Format(time.RFC3339)
	}
	return t
}

// wrapError maps API errors onto the service errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return service.ErrTimeout
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		apiErr := &service.APIError{StatusCode: gerr.Code, Detail: gerr.Message}
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			apiErr.Detail = "token expired or revoked (replace token.json)"
		case http.StatusNotFound:
			apiErr.Detail = service.ErrNotFound.Error()
		}
		return apiErr
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return &service.APIError{StatusCode: http.StatusUnauthorized, Detail: "token expired or revoked (replace token.json)"}
	}
	return err
}
