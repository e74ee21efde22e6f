package restapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"taskdesk/internal/backend/restapi"
	"taskdesk/internal/service"
	"taskdesk/internal/testutil"
)

func newClient(t *testing.T, api *testutil.FakeAPI, opts ...restapi.Option) *restapi.Client {
	t.Helper()
	c, err := restapi.New(context.Background(), api.URL(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_InvalidURL(t *testing.T) {
	if _, err := restapi.New(context.Background(), "localhost:8000"); err == nil {
		t.Error("expected error for URL without scheme")
	}
}

func TestListTasks(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask(uuid.NewString(), "One")
	svc.AddTask(uuid.NewString(), "Two")
	api := testutil.NewFakeAPI(t, svc)
	c := newClient(t, api)

	page, err := c.ListTasks(context.Background(), 0, 100)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if page.Count != 2 || len(page.Data) != 2 || page.Data[1].Title != "Two" {
		t.Errorf("unexpected page: %+v", page)
	}
	req := api.LastRequest()
	if req.Method != http.MethodGet || req.Path != "/api/v1/tasks/" || req.Query != "limit=100&skip=0" {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestListTasks_Empty(t *testing.T) {
	api := testutil.NewFakeAPI(t, testutil.NewFakeService())
	page, err := newClient(t, api).ListTasks(context.Background(), 0, 100)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if page.Data == nil || len(page.Data) != 0 {
		t.Errorf("expected empty non-nil data, got %#v", page.Data)
	}
}

func TestCreateTask(t *testing.T) {
	api := testutil.NewFakeAPI(t, testutil.NewFakeService())
	c := newClient(t, api)

	due := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	task, err := c.CreateTask(context.Background(), service.TaskCreate{
		Title:    "Write docs",
		Priority: service.PriorityHigh,
		Status:   service.StatusTodo,
		DueDate:  &due,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := uuid.Parse(task.ID); err != nil {
		t.Errorf("expected server-assigned UUID, got %q", task.ID)
	}
	if task.DueDate == nil || !task.DueDate.Equal(due) {
		t.Errorf("unexpected due date: %v", task.DueDate)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(api.LastRequest().Body), &body); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if _, ok := body["description"]; ok {
		t.Error("unset description must not be sent")
	}
	if body["priority"] != "high" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestCreateTask_ValidationDetailList(t *testing.T) {
	api := testutil.NewFakeAPI(t, testutil.NewFakeService())
	_, err := newClient(t, api).CreateTask(context.Background(), service.TaskCreate{})

	var apiErr *service.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", apiErr.StatusCode)
	}
	if service.ErrorMessage(err) != "String should have at least 1 character" {
		t.Errorf("unexpected message: %q", service.ErrorMessage(err))
	}
}

func TestGetTask_NotFound(t *testing.T) {
	api := testutil.NewFakeAPI(t, testutil.NewFakeService())
	_, err := newClient(t, api).GetTask(context.Background(), uuid.NewString())

	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if service.ErrorMessage(err) != "Task not found" {
		t.Errorf("unexpected message: %q", service.ErrorMessage(err))
	}
}

func TestUpdateTask_SendsOnlySetFields(t *testing.T) {
	svc := testutil.NewFakeService()
	id := uuid.NewString()
	svc.AddTask(id, "Plan")
	api := testutil.NewFakeAPI(t, svc)

	status := service.StatusDone
	task, err := newClient(t, api).UpdateTask(context.Background(), id, service.TaskUpdate{Status: &status, ClearDueDate: true})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if task.Status != service.StatusDone || task.Title != "Plan" {
		t.Errorf("unexpected task: %+v", task)
	}

	req := api.LastRequest()
	if req.Method != http.MethodPut || req.Path != "/api/v1/tasks/"+id {
		t.Errorf("unexpected request: %+v", req)
	}
	if req.Body != `{"due_date":null,"status":"done"}` {
		t.Errorf("unexpected body: %q", req.Body)
	}
}

func TestDeleteTask(t *testing.T) {
	for _, noContent := range []bool{false, true} {
		svc := testutil.NewFakeService()
		id := uuid.NewString()
		svc.AddTask(id, "Gone")
		api := testutil.NewFakeAPI(t, svc)
		api.NoContentOnDelete = noContent

		if err := newClient(t, api).DeleteTask(context.Background(), id); err != nil {
			t.Fatalf("DeleteTask (204=%v): %v", noContent, err)
		}
		if len(svc.Tasks()) != 0 {
			t.Errorf("task should be deleted (204=%v)", noContent)
		}
	}
}

func TestBearerToken(t *testing.T) {
	api := testutil.NewFakeAPI(t, testutil.NewFakeService())
	api.Token = "secret"

	_, err := newClient(t, api).ListTasks(context.Background(), 0, 10)
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without token, got %v", err)
	}

	if _, err := newClient(t, api, restapi.WithToken("secret")).ListTasks(context.Background(), 0, 10); err != nil {
		t.Fatalf("ListTasks with token: %v", err)
	}
	if got := api.LastRequest().Auth; got != "Bearer secret" {
		t.Errorf("unexpected Authorization header: %q", got)
	}
}

func TestTimeout(t *testing.T) {
	api := testutil.NewFakeAPI(t, testutil.NewFakeService())
	api.Delay = 200 * time.Millisecond

	_, err := newClient(t, api, restapi.WithTimeout(20*time.Millisecond)).ListTasks(context.Background(), 0, 10)
	if !errors.Is(err, service.ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestServerErrorWithoutDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := restapi.New(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.ListTasks(context.Background(), 0, 10)
	if service.ErrorMessage(err) != "request failed: 502 Bad Gateway" {
		t.Errorf("unexpected message: %q", service.ErrorMessage(err))
	}
}

func TestListTasks_TimestampsWithoutOffset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"7c9e6679-7425-40de-944b-e07fc1f90ae7","title":"Naive",` +
			`"description":null,"priority":"medium","status":"todo","due_date":"2026-12-01T00:00:00",` +
			`"created_at":"2025-05-01T12:34:56.789012","updated_at":"2025-05-01T12:34:56.789012"}],"count":1}`))
	}))
	t.Cleanup(srv.Close)

	c, err := restapi.New(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	page, err := c.ListTasks(context.Background(), 0, 100)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(page.Data) != 1 {
		t.Fatalf("expected one task, got %+v", page)
	}
	task := page.Data[0]
	if want := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC); task.DueDate == nil || !task.DueDate.Equal(want) {
		t.Errorf("unexpected due date %v", task.DueDate)
	}
	if want := time.Date(2025, 5, 1, 12, 34, 56, 789012000, time.UTC); !task.CreatedAt.Equal(want) {
		t.Errorf("unexpected created_at %v", task.CreatedAt)
	}
}

func TestFakeAPI_SendsTimestampsWithoutOffset(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask(uuid.NewString(), "Stored")
	api := testutil.NewFakeAPI(t, svc)

	resp, err := http.Get(api.URL() + "/tasks/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var raw struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatal(err)
	}
	created, _ := raw.Data[0]["created_at"].(string)
	if _, err := time.Parse(time.RFC3339, created); err == nil {
		t.Errorf("expected a timestamp without offset, got %q", created)
	}

	page, err := newClient(t, api).ListTasks(context.Background(), 0, 100)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if page.Data[0].CreatedAt.IsZero() {
		t.Error("created_at should decode")
	}
}
