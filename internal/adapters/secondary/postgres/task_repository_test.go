package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/task-tracker-backend/internal/core/domain"
	apperrors "github.com/lorrc/task-tracker-backend/internal/core/errors"
	"github.com/lorrc/task-tracker-backend/internal/core/ports"
)

// newTestRepo is a helper to create the repository for a test.
func newTestRepo(t *testing.T) ports.TaskRepository {
	require.NotNil(t, testPool, "testPool is nil. TestMain may not have run.")
	return NewTaskRepository(testPool)
}

// mustCreate inserts a task through the repository and fails the test on error.
func mustCreate(t *testing.T, repo ports.TaskRepository, title, description, category string) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(title, description, category)
	require.NoError(t, err)

	created, err := repo.Create(context.Background(), task)
	require.NoError(t, err)
	return created
}

func TestTaskRepository_Create(t *testing.T) {
	repo := newTestRepo(t)

	created := mustCreate(t, repo, "Write documentation", "cover the API", "In Progress")

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "Write documentation", created.Title)
	assert.Equal(t, "cover the API", created.Description)
	assert.Equal(t, "In Progress", created.Category)
	assert.WithinDuration(t, time.Now().UTC(), created.CreatedAt, time.Minute)

	// Identical payloads still get distinct identities.
	duplicate := mustCreate(t, repo, "Write documentation", "cover the API", "In Progress")
	assert.NotEqual(t, created.ID, duplicate.ID)
}

func TestTaskRepository_List_Order(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first := mustCreate(t, repo, "first in order", "", "")
	second := mustCreate(t, repo, "second in order", "", "")

	tasks, err := repo.List(ctx)
	require.NoError(t, err)

	posFirst, posSecond := -1, -1
	for i, task := range tasks {
		switch task.ID {
		case first.ID:
			posFirst = i
		case second.ID:
			posSecond = i
		}
	}

	require.NotEqual(t, -1, posFirst, "created task missing from listing")
	require.NotEqual(t, -1, posSecond, "created task missing from listing")
	assert.Less(t, posFirst, posSecond, "listing must preserve creation order")
}

func TestTaskRepository_UpdateMerge(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	t.Run("merges only provided fields", func(t *testing.T) {
		created := mustCreate(t, repo, "original title", "original description", "To-Do")

		category := "Done"
		updated, snapshot, err := repo.UpdateMerge(ctx, created.ID, domain.TaskPatch{Category: &category})
		require.NoError(t, err)

		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "original title", updated.Title)
		assert.Equal(t, "original description", updated.Description)
		assert.Equal(t, "Done", updated.Category)

		// The snapshot reflects the mutation it was taken with.
		var found bool
		for _, task := range snapshot {
			if task.ID == created.ID {
				found = true
				assert.Equal(t, "Done", task.Category)
			}
		}
		assert.True(t, found)
	})

	t.Run("empty field values overwrite", func(t *testing.T) {
		created := mustCreate(t, repo, "keep title", "something", "To-Do")

		// An explicitly empty description is a real change, unlike an
		// absent one.
		empty := ""
		updated, _, err := repo.UpdateMerge(ctx, created.ID, domain.TaskPatch{Description: &empty})
		require.NoError(t, err)

		assert.Equal(t, "keep title", updated.Title)
		assert.Equal(t, "", updated.Description)
	})

	t.Run("empty patch returns current record", func(t *testing.T) {
		created := mustCreate(t, repo, "untouched", "", "")

		updated, snapshot, err := repo.UpdateMerge(ctx, created.ID, domain.TaskPatch{})
		require.NoError(t, err)

		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "untouched", updated.Title)
		assert.NotEmpty(t, snapshot)
	})

	t.Run("unknown id", func(t *testing.T) {
		title := "whatever"
		_, _, err := repo.UpdateMerge(ctx, uuid.New(), domain.TaskPatch{Title: &title})
		assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
	})
}

func TestTaskRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	t.Run("removes the record", func(t *testing.T) {
		created := mustCreate(t, repo, "to be deleted", "", "")

		snapshot, err := repo.Delete(ctx, created.ID)
		require.NoError(t, err)

		for _, task := range snapshot {
			assert.NotEqual(t, created.ID, task.ID, "deleted task still present in snapshot")
		}

		// Deleting again reports not-found.
		_, err = repo.Delete(ctx, created.ID)
		assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.Delete(ctx, uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
	})
}
