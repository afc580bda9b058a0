package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lorrc/task-tracker-backend/internal/core/domain"
	"github.com/lorrc/task-tracker-backend/internal/core/ports"
)

// TaskService implements business logic for task management. Every
// successful mutation persists first, then emits exactly one change
// event through the feed; list requests bypass the feed entirely.
type TaskService struct {
	taskRepo ports.TaskRepository
	feed     ports.ChangeFeed
	logger   *slog.Logger
}

var _ ports.TaskService = (*TaskService)(nil)

// NewTaskService creates a new task service. The feed is an optional
// collaborator: passing nil produces a plain CRUD service with no
// real-time notifications.
func NewTaskService(taskRepo ports.TaskRepository, feed ports.ChangeFeed, logger *slog.Logger) ports.TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		feed:     feed,
		logger:   logger.With("component", "task_service"),
	}
}

// CreateTask handles the use case for adding a new task.
func (s *TaskService) CreateTask(ctx context.Context, params ports.CreateTaskParams) (*domain.Task, error) {
	task, err := domain.NewTask(params.Title, params.Description, params.Category)
	if err != nil {
		return nil, err
	}

	created, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	s.emit(domain.EventTaskCreated, created)
	return created, nil
}

// ListTasks returns the current task collection snapshot.
func (s *TaskService) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	return s.taskRepo.List(ctx)
}

// UpdateTask merges the patch into an existing task and broadcasts the
// post-mutation collection snapshot.
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	updated, snapshot, err := s.taskRepo.UpdateMerge(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.emit(domain.EventTaskUpdated, snapshot)
	return updated, nil
}

// DeleteTask removes a task and broadcasts the post-mutation collection
// snapshot.
func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	snapshot, err := s.taskRepo.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.emit(domain.EventTaskDeleted, snapshot)
	return nil
}

// emit hands the event to the feed when one is wired. Emission happens
// after persistence is confirmed and before the mutation returns to the
// gateway; the feed itself never blocks.
func (s *TaskService) emit(kind domain.EventType, payload interface{}) {
	if s.feed == nil {
		return
	}
	s.feed.Emit(kind, payload)
}
