package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/task-tracker-backend/internal/core/domain"
	apperrors "github.com/lorrc/task-tracker-backend/internal/core/errors"
	"github.com/lorrc/task-tracker-backend/internal/core/ports"
)

// TaskRepository is the secondary adapter for task persistence.
//
// Update and delete run inside a transaction together with the snapshot
// read, so the collection returned alongside a mutation is exactly the
// store state that mutation produced.
type TaskRepository struct {
	pool *pgxpool.Pool
	tm   *TransactionManager
}

// Ensure TaskRepository implements the ports.TaskRepository interface.
var _ ports.TaskRepository = (*TaskRepository)(nil)

// NewTaskRepository creates a new task repository.
func NewTaskRepository(pool *pgxpool.Pool) ports.TaskRepository {
	return &TaskRepository{
		pool: pool,
		tm:   NewTransactionManager(pool),
	}
}

const taskColumns = `id, title, description, category, created_at`

// Create persists a new task entity. The repository assigns the ID.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	const query = `
INSERT INTO tasks (id, title, description, category, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + taskColumns

	row := r.pool.QueryRow(ctx, query,
		uuid.New(),
		task.Title,
		task.Description,
		task.Category,
		task.CreatedAt,
	)
	return scanTask(row)
}

// List retrieves the full task collection in creation-time order.
func (r *TaskRepository) List(ctx context.Context) ([]*domain.Task, error) {
	return listTasks(ctx, r.pool)
}

// UpdateMerge merges the non-nil patch fields into an existing record
// and returns the updated record plus the post-mutation collection.
func (r *TaskRepository) UpdateMerge(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, []*domain.Task, error) {
	const query = `
UPDATE tasks
SET title       = COALESCE($2, title),
    description = COALESCE($3, description),
    category    = COALESCE($4, category)
WHERE id = $1
RETURNING ` + taskColumns

	const existsQuery = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	var (
		updated  *domain.Task
		snapshot []*domain.Task
	)

	err := r.tm.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var row pgx.Row
		if patch.IsEmpty() {
			// Nothing to merge; the update still requires the record to
			// exist so a missing id reports not-found, not a no-op.
			row = tx.QueryRow(ctx, existsQuery, id)
		} else {
			row = tx.QueryRow(ctx, query, id, patch.Title, patch.Description, patch.Category)
		}

		task, err := scanTask(row)
		if err != nil {
			return err
		}
		updated = task

		snapshot, err = listTasks(ctx, tx)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	return updated, snapshot, nil
}

// Delete removes a record and returns the post-mutation collection.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) ([]*domain.Task, error) {
	const query = `DELETE FROM tasks WHERE id = $1`

	var snapshot []*domain.Task

	err := r.tm.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrTaskNotFound
		}

		snapshot, err = listTasks(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

func listTasks(ctx context.Context, q DBTX) ([]*domain.Task, error) {
	const query = `
SELECT ` + taskColumns + `
FROM tasks
ORDER BY created_at, id`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Category,
		&task.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}
