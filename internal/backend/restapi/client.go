// Package restapi implements the service.Service interface over the task REST API.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"taskdesk/internal/config"
	"taskdesk/internal/service"
)

const (
	// APITimeout is the default timeout for API calls.
	APITimeout = 5 * time.Second

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Client implements service.Service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	token   string
	timeout time.Duration
	logger  *slog.Logger
	base    *http.Client
}

// WithToken sends token as a bearer token on every request.
func WithToken(token string) Option {
	return func(o *clientOptions) { o.token = token }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger logs one debug line per request.
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithHTTPClient sets the underlying HTTP client (for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.base = c }
}

// New creates a client for the API rooted at baseURL, e.g.
// http://localhost:8000/api/v1.
func New(ctx context.Context, baseURL string, opts ...Option) (*Client, error) {
	o := clientOptions{
		timeout: APITimeout,
		logger:  slog.New(slog.DiscardHandler),
		base:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(&o)
	}

	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api_url %q", baseURL)
	}

	transport := o.base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	httpClient := &http.Client{
		Transport: &loggingTransport{base: transport, logger: o.logger},
		Jar:       o.base.Jar,
	}
	if o.token != "" {
		// oauth2.NewClient wraps the client found in ctx.
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: o.token,
			TokenType:   "Bearer",
		}))
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		timeout: o.timeout,
		logger:  o.logger,
	}, nil
}

// NewFromConfig creates a client from the api_url, token and timeout settings.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	return New(ctx, cfg.APIURL,
		WithToken(cfg.Token),
		WithTimeout(cfg.Timeout),
		WithLogger(logger),
	)
}

// ListTasks returns one page of tasks.
func (c *Client) ListTasks(ctx context.Context, skip, limit int) (service.TaskPage, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))

	var page service.TaskPage
	if err := c.do(ctx, http.MethodGet, "/tasks/?"+q.Encode(), nil, &page); err != nil {
		return service.TaskPage{}, err
	}
	if page.Data == nil {
		page.Data = []service.Task{}
	}
	return page, nil
}

// GetTask returns one task.
func (c *Client) GetTask(ctx context.Context, id string) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// CreateTask creates a task and returns it as stored by the server.
func (c *Client) CreateTask(ctx context.Context, in service.TaskCreate) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, http.MethodPost, "/tasks/", in, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// UpdateTask sends the set fields of in.
func (c *Client) UpdateTask(ctx context.Context, id string, in service.TaskUpdate) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), in.Fields(), &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// DeleteTask deletes a task. The response body, if any, is ignored.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}

// do sends one request. A non-2xx response becomes a *service.APIError.
// out may be nil to discard the body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return wrapError(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// validationItem is one entry of a 422 detail list.
type validationItem struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// decodeError reads an error response. The detail is either a string or a
// list of validation items; for a list the first item's msg is used.
func decodeError(resp *http.Response) error {
	apiErr := &service.APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil || len(envelope.Detail) == 0 {
		return apiErr
	}

	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		apiErr.Detail = detail
		return apiErr
	}
	var items []validationItem
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
		apiErr.Detail = items[0].Msg
	}
	return apiErr
}

// wrapError converts transport errors into user-facing ones.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return service.ErrTimeout
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return &service.APIError{StatusCode: http.StatusUnauthorized, Detail: "token rejected"}
	}
	return err
}

// loggingTransport logs each round trip at debug level.
type loggingTransport struct {
	base   http.RoundTripper
	logger *slog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.logger.Debug("http request failed",
			"method", req.Method, "path", req.URL.Path,
			"duration", time.Since(start), "error", err)
		return nil, err
	}
	t.logger.Debug("http request",
		"method", req.Method, "path", req.URL.Path,
		"status", resp.StatusCode, "duration", time.Since(start))
	return resp, nil
}
