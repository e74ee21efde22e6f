package testutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"taskdesk/internal/service"
)

// APIPrefix is the path prefix the fake API serves under.
const APIPrefix = "/api/v1"

// RecordedRequest is a request seen by FakeAPI.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

// FakeAPI serves the task REST contract on top of a FakeService.
type FakeAPI struct {
	Server *httptest.Server
	Svc    *FakeService

	// Token, when set, must be sent as a bearer token.
	Token string

	// NoContentOnDelete makes DELETE answer 204 instead of the deleted task.
	NoContentOnDelete bool

	// Delay is applied before every response.
	Delay time.Duration

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewFakeAPI starts a fake API server. It is closed when the test ends.
func NewFakeAPI(t *testing.T, svc *FakeService) *FakeAPI {
	t.Helper()
	api := &FakeAPI{Svc: svc}

	r := mux.NewRouter()
	s := r.PathPrefix(APIPrefix).Subrouter()
	s.Use(api.record, api.auth)
	s.HandleFunc("/tasks/", api.listTasks).Methods(http.MethodGet)
	s.HandleFunc("/tasks/", api.createTask).Methods(http.MethodPost)
	s.HandleFunc("/tasks/{taskID}", api.getTask).Methods(http.MethodGet)
	s.HandleFunc("/tasks/{taskID}", api.updateTask).Methods(http.MethodPut)
	s.HandleFunc("/tasks/{taskID}", api.deleteTask).Methods(http.MethodDelete)

	api.Server = httptest.NewServer(r)
	t.Cleanup(api.Server.Close)
	return api
}

// URL is the API base URL, including the prefix.
func (a *FakeAPI) URL() string {
	return a.Server.URL + APIPrefix
}

// Requests returns the requests received so far.
func (a *FakeAPI) Requests() []RecordedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]RecordedRequest, len(a.requests))
	copy(out, a.requests)
	return out
}

// LastRequest returns the most recent request.
func (a *FakeAPI) LastRequest() RecordedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.requests) == 0 {
		return RecordedRequest{}
	}
	return a.requests[len(a.requests)-1]
}

func (a *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		a.mu.Lock()
		a.requests = append(a.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})
		delay := a.Delay
		a.mu.Unlock()
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (a *FakeAPI) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.Token != "" && r.Header.Get("Authorization") != "Bearer "+a.Token {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *FakeAPI) listTasks(w http.ResponseWriter, r *http.Request) {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	page, err := a.Svc.ListTasks(r.Context(), skip, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := apiPage{Data: make([]apiTask, len(page.Data)), Count: page.Count}
	for i, t := range page.Data {
		out.Data[i] = newAPITask(t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *FakeAPI) createTask(w http.ResponseWriter, r *http.Request) {
	var in service.TaskCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if in.Title == "" {
		writeValidation(w, "title", "String should have at least 1 character")
		return
	}
	if in.Priority == "" {
		in.Priority = service.DefaultPriority
	}
	if in.Status == "" {
		in.Status = service.DefaultStatus
	}
	task, err := a.Svc.CreateTask(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAPITask(task))
}

func (a *FakeAPI) getTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	task, err := a.Svc.GetTask(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAPITask(task))
}

func (a *FakeAPI) updateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	in, err := decodeUpdate(fields)
	if err != nil {
		writeValidation(w, "body", err.Error())
		return
	}
	task, err := a.Svc.UpdateTask(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAPITask(task))
}

func (a *FakeAPI) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	task, err := a.Svc.GetTask(r.Context(), id)
	if err == nil {
		err = a.Svc.DeleteTask(r.Context(), id)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if a.NoContentOnDelete {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, newAPITask(task))
}

func taskID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["taskID"]
	if _, err := uuid.Parse(id); err != nil {
		writeValidation(w, "task_id", "Input should be a valid UUID")
		return "", false
	}
	return id, true
}

func decodeUpdate(fields map[string]json.RawMessage) (service.TaskUpdate, error) {
	var u service.TaskUpdate
	for k, raw := range fields {
		var err error
		switch k {
		case "title":
			err = json.Unmarshal(raw, &u.Title)
		case "description":
			err = json.Unmarshal(raw, &u.Description)
		case "priority":
			err = json.Unmarshal(raw, &u.Priority)
		case "status":
			err = json.Unmarshal(raw, &u.Status)
		case "due_date":
			if string(raw) == "null" {
				u.ClearDueDate = true
			} else {
				err = json.Unmarshal(raw, &u.DueDate)
			}
		default:
			err = errors.New("unknown field " + k)
		}
		if err != nil {
			return service.TaskUpdate{}, err
		}
	}
	return u, nil
}

// apiTask is a task as the server encodes it. Timestamps carry no offset.
type apiTask struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description *string          `json:"description"`
	Priority    service.Priority `json:"priority"`
	Status      service.Status   `json:"status"`
	DueDate     *string          `json:"due_date"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
}

type apiPage struct {
	Data  []apiTask `json:"data"`
	Count int       `json:"count"`
}

func newAPITask(t service.Task) apiTask {
	out := apiTask{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		CreatedAt:   naiveTime(t.CreatedAt),
		UpdatedAt:   naiveTime(t.UpdatedAt),
	}
	if t.DueDate != nil {
		due := naiveTime(*t.DueDate)
		out.DueDate = &due
	}
	return out
}

func naiveTime(t time.Time) string {
	return t.UTC().Format(service.NaiveTimeLayout)
}

func writeServiceError(w http.ResponseWriter, err error) {
	var apiErr *service.APIError
	switch {
	case errors.As(err, &apiErr):
		writeDetail(w, apiErr.StatusCode, apiErr.Detail)
	case errors.Is(err, service.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Task not found")
	default:
		writeDetail(w, http.StatusInternalServerError, err.Error())
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeValidation(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": []map[string]any{{
			"loc":  []string{"body", field},
			"msg":  msg,
			"type": "value_error",
		}},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
