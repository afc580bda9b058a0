package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/lorrc/task-tracker-backend/internal/core/domain"
)

// TaskRepository is the secondary port for task persistence. Mutating
// operations that feed a snapshot event return the post-mutation
// collection read inside the same transaction, so the emitted payload is
// exactly the store state the mutation produced.
type TaskRepository interface {
	// Create persists the task, assigning its ID. The returned entity is
	// the stored row.
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// List returns the full task collection in creation-time order.
	List(ctx context.Context) ([]*domain.Task, error)

	// UpdateMerge merges the non-nil patch fields into the record.
	// Returns errors.ErrTaskNotFound when the id does not resolve.
	UpdateMerge(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, []*domain.Task, error)

	// Delete removes the record. Returns errors.ErrTaskNotFound when the
	// id does not resolve.
	Delete(ctx context.Context, id uuid.UUID) ([]*domain.Task, error)
}

// CreateTaskParams defines the required input for creating a new task.
type CreateTaskParams struct {
	Title       string
	Description string
	Category    string
}

// TaskService defines the core business operations for managing tasks.
type TaskService interface {
	CreateTask(ctx context.Context, params CreateTaskParams) (*domain.Task, error)
	ListTasks(ctx context.Context) ([]*domain.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

// ChangeFeed is the port mutating operations emit through. Emit assigns
// the event's sequence number and hands it to the dispatcher; it never
// blocks on delivery and never fails the triggering operation.
type ChangeFeed interface {
	Emit(kind domain.EventType, payload interface{})
}

// EventBroadcaster is the port the change feed delivers through; the
// WebSocket hub implements it. Enqueueing must not block.
type EventBroadcaster interface {
	Broadcast(event domain.Event) error
}
