// Package api exposes the local task ledger over HTTP and as MCP tools.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/waihoh/amazon-braket-examples/internal/braket"
	"github.com/waihoh/amazon-braket-examples/internal/storage"
)

// TaskStore is the ledger access the API layer needs.
type TaskStore interface {
	ListTasks(limit int) ([]storage.TaskRecord, error)
	GetTask(arn string) (storage.TaskRecord, error)
	UpdateTaskStatus(arn, status, failureReason string) error
}

// TaskService refreshes task status from the remote service.
type TaskService interface {
	GetTask(ctx context.Context, arn string) (*braket.TaskInfo, error)
}

type AppDeps struct {
	Store  TaskStore
	Client TaskService // optional; if nil, task reads serve the last stored status
}

// TaskResponse is the JSON shape of one ledger task.
type TaskResponse struct {
	ARN           string `json:"arn"`
	DeviceARN     string `json:"device_arn"`
	Label         string `json:"label,omitempty"`
	Shots         int64  `json:"shots"`
	RewiringMode  string `json:"rewiring_mode"`
	Status        string `json:"status"`
	FailureReason string `json:"failure_reason,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// NewAppHandler builds the status server router.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Get("/tasks", handleListTasks(deps))
	r.Get("/tasks/*", handleGetTask(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleListTasks(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid limit %q", raw)
				return
			}
			limit = n
		}

		tasks, err := deps.Store.ListTasks(limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "internal_error", "listing tasks: %v", err)
			return
		}

		out := make([]TaskResponse, 0, len(tasks))
		for _, t := range tasks {
			out = append(out, toResponse(t))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleGetTask(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		arn := chi.URLParam(r, "*")

		rec, err := deps.Store.GetTask(arn)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "no task %q in the local ledger", arn)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "internal_error", "loading task: %v", err)
			return
		}

		// Refresh non-terminal tasks from the service when a client is wired.
		if deps.Client != nil && !braket.Status(rec.Status).Terminal() {
			ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
			defer cancel()

			info, err := deps.Client.GetTask(ctx, arn)
			if err == nil {
				rec.Status = string(info.Status)
				rec.FailureReason = info.FailureReason
				if err := deps.Store.UpdateTaskStatus(arn, rec.Status, rec.FailureReason); err != nil {
					httpError(w, http.StatusInternalServerError, "internal_error", "updating task: %v", err)
					return
				}
			}
		}

		writeJSON(w, http.StatusOK, toResponse(rec))
	}
}

func toResponse(t storage.TaskRecord) TaskResponse {
	return TaskResponse{
		ARN:           t.ARN,
		DeviceARN:     t.DeviceARN,
		Label:         t.Label,
		Shots:         t.Shots,
		RewiringMode:  t.RewiringMode,
		Status:        t.Status,
		FailureReason: t.FailureReason,
		CreatedAt:     t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
