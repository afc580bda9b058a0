package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lorrc/task-tracker-backend/internal/adapters/primary/validation"
	"github.com/lorrc/task-tracker-backend/internal/core/domain"
	apperrors "github.com/lorrc/task-tracker-backend/internal/core/errors"
	"github.com/lorrc/task-tracker-backend/internal/core/ports"
)

// TaskHandler handles HTTP requests for tasks
type TaskHandler struct {
	taskService  ports.TaskService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(
	taskService ports.TaskService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *TaskHandler {
	return &TaskHandler{
		taskService:  taskService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "task"),
	}
}

// RegisterRoutes sets up the routing for all task endpoints.
func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListTasks)
	r.Post("/", h.HandleCreateTask)

	r.Route("/{taskID}", func(r chi.Router) {
		r.Put("/", h.HandleUpdateTask)
		r.Delete("/", h.HandleDeleteTask)
	})
}

// --- Request/Response DTOs ---

// CreateTaskRequest defines the expected JSON body for creating a task
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Validate validates the create task request
func (r *CreateTaskRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("title", r.Title).
		MaxLength("title", r.Title, domain.MaxTitleLength)

	v.MaxLength("description", r.Description, domain.MaxDescriptionLength)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// UpdateTaskRequest defines the expected JSON body for updating a task.
// All fields are optional; absent fields leave the stored value untouched.
// Unknown fields in the body are ignored.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

// Validate validates the update task request
func (r *UpdateTaskRequest) Validate() error {
	v := validation.NewValidator()

	if r.Title != nil {
		v.MaxLength("title", *r.Title, domain.MaxTitleLength)
	}
	if r.Description != nil {
		v.MaxLength("description", *r.Description, domain.MaxDescriptionLength)
	}

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

func (r *UpdateTaskRequest) toPatch() domain.TaskPatch {
	return domain.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
	}
}

// TaskDTO defines the JSON response for tasks.
type TaskDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	CreatedAt   string `json:"createdAt"`
}

func toTaskDTO(task *domain.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Category:    task.Category,
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
	}
}

func toTaskDTOs(tasks []*domain.Task) []TaskDTO {
	response := make([]TaskDTO, 0, len(tasks))
	for _, task := range tasks {
		response = append(response, toTaskDTO(task))
	}
	return response
}

// --- Handlers ---

// HandleListTasks handles GET /tasks
func (h *TaskHandler) HandleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.ListTasks(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	// The response body is the bare array, an empty list encodes as [].
	WriteJSON(w, http.StatusOK, toTaskDTOs(tasks))
}

// HandleCreateTask handles POST /tasks
func (h *TaskHandler) HandleCreateTask(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[CreateTaskRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), ports.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("task created",
		"request_id", GetRequestID(r.Context()),
		"task_id", task.ID,
	)

	WriteCreated(w, toTaskDTO(task))
}

// HandleUpdateTask handles PUT /tasks/{taskID}
func (h *TaskHandler) HandleUpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.parseTaskID(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[UpdateTaskRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if _, err := h.taskService.UpdateTask(r.Context(), taskID, req.toPatch()); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("task updated",
		"request_id", GetRequestID(r.Context()),
		"task_id", taskID,
	)

	WriteMessage(w, "Task updated")
}

// HandleDeleteTask handles DELETE /tasks/{taskID}
func (h *TaskHandler) HandleDeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.parseTaskID(w, r)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), taskID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("task deleted",
		"request_id", GetRequestID(r.Context()),
		"task_id", taskID,
	)

	WriteMessage(w, "Task deleted")
}

// parseTaskID extracts and validates the task ID from the URL. A malformed
// ID is rejected before the store is ever consulted.
func (h *TaskHandler) parseTaskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "taskID")

	taskID, err := uuid.Parse(idStr)
	if err != nil {
		h.errorHandler.Handle(w, r, apperrors.ErrInvalidTaskID)
		return uuid.Nil, false
	}

	return taskID, true
}
