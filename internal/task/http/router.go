package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	commonerrors "github.com/daily-task-list/backend/internal/common/errors"
	commonhttp "github.com/daily-task-list/backend/internal/common/http"
	"github.com/daily-task-list/backend/internal/common/logger"
	"github.com/daily-task-list/backend/internal/task/domain"
	"github.com/daily-task-list/backend/internal/task/service"
)

type TaskService interface {
	ListTasks(ctx context.Context, userID string) ([]domain.Task, error)
	CreateTask(ctx context.Context, input service.CreateInput) (domain.Task, error)
	SetCompletion(ctx context.Context, id domain.ID, completed *bool) error
	DeleteTask(ctx context.Context, id domain.ID) error
}

type createTaskRequest struct {
	Title    string          `json:"title" validate:"required"`
	UserID   string          `json:"user_id" validate:"required"`
	Priority json.RawMessage `json:"priority"`
	DueDate  *string         `json:"due_date"`
}

type setCompletionRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

type taskResponse struct {
	ID        string  `json:"_id"`
	Title     string  `json:"title"`
	Completed bool    `json:"completed"`
	UserID    string  `json:"user_id"`
	Priority  string  `json:"priority"`
	DueDate   *string `json:"due_date"`
}

type createTaskResponse struct {
	Message   string  `json:"message"`
	TaskID    string  `json:"task_id"`
	Title     string  `json:"title"`
	Completed bool    `json:"completed"`
	Priority  string  `json:"priority"`
	DueDate   *string `json:"due_date"`
}

type Handler struct {
	tasks   TaskService
	errors  *commonhttp.ErrorHandler
	log     *logger.Logger
	timeout time.Duration
}

func NewHandler(tasks TaskService, requestTimeout time.Duration, log *logger.Logger) *Handler {
	return &Handler{
		tasks:   tasks,
		errors:  commonhttp.NewErrorHandler(log),
		log:     log,
		timeout: requestTimeout,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	withTimeout := commonhttp.WithTimeout(h.timeout)
	mux.HandleFunc("GET /tasks", withTimeout(h.list))
	mux.HandleFunc("POST /tasks", withTimeout(h.create))
	mux.HandleFunc("PUT /tasks/{id}", withTimeout(h.setCompletion))
	mux.HandleFunc("DELETE /tasks/{id}", withTimeout(h.delete))
}

func toResponse(t domain.Task) taskResponse {
	return taskResponse{
		ID:        string(t.ID),
		Title:     t.Title,
		Completed: t.Completed,
		UserID:    t.UserID,
		Priority:  t.Priority,
		DueDate:   t.DueDate,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListTasks(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		h.errors.HandleError(w, r, "list_tasks", err)
		return
	}

	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toResponse(t))
	}
	commonhttp.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := commonhttp.DecodeAndValidate(r, &req, commonerrors.ErrMissingTaskFields); err != nil {
		h.errors.HandleError(w, r, "create_task", err)
		return
	}

	priority, err := parsePriority(req.Priority)
	if err != nil {
		h.errors.HandleError(w, r, "create_task", err)
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), service.CreateInput{
		Title:    req.Title,
		UserID:   req.UserID,
		Priority: priority,
		DueDate:  req.DueDate,
	})
	if err != nil {
		h.errors.HandleError(w, r, "create_task", err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, createTaskResponse{
		Message:   "Task added",
		TaskID:    string(task.ID),
		Title:     task.Title,
		Completed: task.Completed,
		Priority:  task.Priority,
		DueDate:   task.DueDate,
	})
}

// parsePriority returns nil for an absent or null priority so the service
// applies the default; any other value must be a string.
func parsePriority(raw json.RawMessage) (*string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var p string
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, commonerrors.ErrInvalidJSON.WithCause(err)
	}
	return &p, nil
}

func (h *Handler) setCompletion(w http.ResponseWriter, r *http.Request) {
	var req setCompletionRequest
	if err := commonhttp.DecodeAndValidate(r, &req, commonerrors.ErrMissingCompleted); err != nil {
		h.errors.HandleError(w, r, "set_completion", err)
		return
	}

	if err := h.tasks.SetCompletion(r.Context(), domain.ID(r.PathValue("id")), req.Completed); err != nil {
		h.errors.HandleError(w, r, "set_completion", err)
		return
	}

	commonhttp.WriteMessage(w, http.StatusOK, "Task updated")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.DeleteTask(r.Context(), domain.ID(r.PathValue("id"))); err != nil {
		h.errors.HandleError(w, r, "delete_task", err)
		return
	}

	commonhttp.WriteMessage(w, http.StatusOK, "Task deleted")
}
