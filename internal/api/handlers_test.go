package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/waihoh/amazon-braket-examples/internal/braket"
	"github.com/waihoh/amazon-braket-examples/internal/storage"
)

type fakeStore struct {
	tasks   map[string]storage.TaskRecord
	updated map[string]string
}

func newFakeStore(records ...storage.TaskRecord) *fakeStore {
	s := &fakeStore{
		tasks:   make(map[string]storage.TaskRecord),
		updated: make(map[string]string),
	}
	for _, r := range records {
		s.tasks[r.ARN] = r
	}
	return s
}

func (s *fakeStore) ListTasks(limit int) ([]storage.TaskRecord, error) {
	var out []storage.TaskRecord
	for _, t := range s.tasks {
		if len(out) == limit {
			break
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *fakeStore) GetTask(arn string) (storage.TaskRecord, error) {
	t, ok := s.tasks[arn]
	if !ok {
		return storage.TaskRecord{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *fakeStore) UpdateTaskStatus(arn, status, failureReason string) error {
	if _, ok := s.tasks[arn]; !ok {
		return storage.ErrNotFound
	}
	t := s.tasks[arn]
	t.Status = status
	t.FailureReason = failureReason
	s.tasks[arn] = t
	s.updated[arn] = status
	return nil
}

type fakeClient struct {
	status braket.Status
	calls  int
}

func (c *fakeClient) GetTask(ctx context.Context, arn string) (*braket.TaskInfo, error) {
	c.calls++
	return &braket.TaskInfo{ARN: arn, Status: c.status}, nil
}

func testRecord(arn, status string) storage.TaskRecord {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return storage.TaskRecord{
		ARN:          arn,
		DeviceARN:    "arn:device",
		Shots:        100,
		RewiringMode: storage.RewiringAutomatic,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestHealthEndpoint(t *testing.T) {
	handler := NewAppHandler(AppDeps{Store: newFakeStore()})

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestListTasks(t *testing.T) {
	store := newFakeStore(
		testRecord("arn:one", "COMPLETED"),
		testRecord("arn:two", "RUNNING"),
	)
	handler := NewAppHandler(AppDeps{Store: store})

	req := httptest.NewRequest("GET", "/tasks", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var out []TaskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("got %d tasks, want 2", len(out))
	}
}

func TestListTasksBadLimit(t *testing.T) {
	handler := NewAppHandler(AppDeps{Store: newFakeStore()})

	req := httptest.NewRequest("GET", "/tasks?limit=zero", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetTaskARNWithSlashes(t *testing.T) {
	arn := "arn:aws:braket:us-west-1:123456789012:quantum-task/abc-def"
	store := newFakeStore(testRecord(arn, "COMPLETED"))
	handler := NewAppHandler(AppDeps{Store: store})

	req := httptest.NewRequest("GET", "/tasks/"+arn, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var out TaskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if out.ARN != arn {
		t.Errorf("ARN = %q, want %q", out.ARN, arn)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	handler := NewAppHandler(AppDeps{Store: newFakeStore()})

	req := httptest.NewRequest("GET", "/tasks/arn:missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetTaskRefreshesNonTerminal(t *testing.T) {
	store := newFakeStore(testRecord("arn:task", "RUNNING"))
	client := &fakeClient{status: braket.StatusCompleted}
	handler := NewAppHandler(AppDeps{Store: store, Client: client})

	req := httptest.NewRequest("GET", "/tasks/arn:task", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var out TaskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if out.Status != "COMPLETED" {
		t.Errorf("Status = %q, want refreshed COMPLETED", out.Status)
	}
	if store.updated["arn:task"] != "COMPLETED" {
		t.Error("refreshed status should be written back to the ledger")
	}
}

func TestGetTaskSkipsRefreshForTerminal(t *testing.T) {
	store := newFakeStore(testRecord("arn:task", "COMPLETED"))
	client := &fakeClient{status: braket.StatusCompleted}
	handler := NewAppHandler(AppDeps{Store: store, Client: client})

	req := httptest.NewRequest("GET", "/tasks/arn:task", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if client.calls != 0 {
		t.Errorf("client called %d times for a terminal task, want 0", client.calls)
	}
}
