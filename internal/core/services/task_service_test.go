package services_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/task-tracker-backend/internal/core/domain"
	apperrors "github.com/lorrc/task-tracker-backend/internal/core/errors"
	"github.com/lorrc/task-tracker-backend/internal/core/mocks"
	"github.com/lorrc/task-tracker-backend/internal/core/ports"
	"github.com/lorrc/task-tracker-backend/internal/core/services"
)

func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockRepo := mocks.NewMockTaskRepository()
		mockFeed := mocks.NewMockChangeFeed()

		svc := services.NewTaskService(mockRepo, mockFeed, slog.Default())

		created := &domain.Task{
			ID:       uuid.New(),
			Title:    "Write release notes",
			Category: "To-Do",
		}

		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Task")).Return(created, nil)
		mockFeed.On("Emit", domain.EventTaskCreated, created).Return()

		task, err := svc.CreateTask(ctx, ports.CreateTaskParams{
			Title: "Write release notes",
		})

		require.NoError(t, err)
		assert.Equal(t, created.ID, task.ID)
		assert.Equal(t, "Write release notes", task.Title)

		mockRepo.AssertExpectations(t)
		mockFeed.AssertExpectations(t)
	})

	t.Run("defaults category when omitted", func(t *testing.T) {
		mockRepo := mocks.NewMockTaskRepository()

		svc := services.NewTaskService(mockRepo, nil, slog.Default())

		mockRepo.On("Create", ctx, mock.MatchedBy(func(task *domain.Task) bool {
			return task.Category == domain.DefaultCategory
		})).Return(&domain.Task{Title: "t", Category: domain.DefaultCategory}, nil)

		_, err := svc.CreateTask(ctx, ports.CreateTaskParams{Title: "t"})

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("validation error for empty title", func(t *testing.T) {
		mockRepo := mocks.NewMockTaskRepository()
		mockFeed := mocks.NewMockChangeFeed()

		svc := services.NewTaskService(mockRepo, mockFeed, slog.Default())

		task, err := svc.CreateTask(ctx, ports.CreateTaskParams{Title: ""})

		assert.Nil(t, task)
		assert.ErrorIs(t, err, domain.ErrTitleRequired)
		mockRepo.AssertNotCalled(t, "Create")
		mockFeed.AssertNotCalled(t, "Emit")
	})

	t.Run("no event on repository failure", func(t *testing.T) {
		mockRepo := mocks.NewMockTaskRepository()
		mockFeed := mocks.NewMockChangeFeed()

		svc := services.NewTaskService(mockRepo, mockFeed, slog.Default())

		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Task")).
			Return(nil, errors.New("connection refused"))

		task, err := svc.CreateTask(ctx, ports.CreateTaskParams{Title: "t"})

		assert.Nil(t, task)
		assert.Error(t, err)
		mockFeed.AssertNotCalled(t, "Emit")
	})

	t.Run("works without a feed", func(t *testing.T) {
		mockRepo := mocks.NewMockTaskRepository()

		svc := services.NewTaskService(mockRepo, nil, slog.Default())

		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Task")).
			Return(&domain.Task{Title: "t"}, nil)

		_, err := svc.CreateTask(ctx, ports.CreateTaskParams{Title: "t"})

		require.NoError(t, err)
	})
}

func TestTaskService_ListTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockRepo := mocks.NewMockTaskRepository()
		mockFeed := mocks.NewMockChangeFeed()

		svc := services.NewTaskService(mockRepo, mockFeed, slog.Default())

		expected := []*domain.Task{
			{ID: uuid.New(), Title: "first"},
			{ID: uuid.New(), Title: "second"},
		}
		mockRepo.On("List", ctx).Return(expected, nil)

		tasks, err := svc.ListTasks(ctx)

		require.NoError(t, err)
		assert.Equal(t, expected, tasks)

		// Reads never touch the feed
		mockFeed.AssertNotCalled(t, "Emit")
	})

	t.Run("propagates repository error", func(t *testing.T) {
		mockRepo := mocks.NewMockTaskRepository()

		svc := services.NewTaskService(mockRepo, nil, slog.Default())

		mockRepo.On("List", ctx).Return(nil, apperrors.ErrStoreUnavailable)

		tasks, err := svc.ListTasks(ctx)

		assert.Nil(t, tasks)
		assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	})
}

func TestTaskService_UpdateTask(t *testing.T) {
	ctx := context.Background()
	taskID := uuid.New()

	t.Run("success emits snapshot", func(t *testing.T) {
		mockRepo := mocks.NewMockTaskRepository()
		mockFeed := mocks.NewMockChangeFeed()

		svc := services.NewTaskService(mockRepo, mockFeed, slog.Default())

		title := "renamed"
		patch := domain.TaskPatch{Title: &title}

		updated := &domain.Task{ID: taskID, Title: "renamed"}
		snapshot := []*domain.Task{updated}

		mockRepo.On("UpdateMerge", ctx, taskID, patch).Return(updated, snapshot, nil)
		mockFeed.On("Emit", domain.EventTaskUpdated, mock.MatchedBy(func(payload interface{}) bool {
			tasks, ok := payload.([]*domain.Task)
			return ok && len(tasks) == 1 && tasks[0].Title == "renamed"
		})).Return()

		task, err := svc.UpdateTask(ctx, taskID, patch)

		require.NoError(t, err)
		assert.Equal(t, "renamed", task.Title)

		mockRepo.AssertExpectations(t)
		mockFeed.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := mocks.NewMockTaskRepository()
		mockFeed := mocks.NewMockChangeFeed()

		svc := services.NewTaskService(mockRepo, mockFeed, slog.Default())

		mockRepo.On("UpdateMerge", ctx, taskID, mock.Anything).
			Return(nil, nil, apperrors.ErrTaskNotFound)

		task, err := svc.UpdateTask(ctx, taskID, domain.TaskPatch{})

		assert.Nil(t, task)
		assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
		mockFeed.AssertNotCalled(t, "Emit")
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	ctx := context.Background()
	taskID := uuid.New()

	t.Run("success emits snapshot", func(t *testing.T) {
		mockRepo := mocks.NewMockTaskRepository()
		mockFeed := mocks.NewMockChangeFeed()

		svc := services.NewTaskService(mockRepo, mockFeed, slog.Default())

		snapshot := []*domain.Task{{ID: uuid.New(), Title: "survivor"}}

		mockRepo.On("Delete", ctx, taskID).Return(snapshot, nil)
		mockFeed.On("Emit", domain.EventTaskDeleted, mock.Anything).Return()

		err := svc.DeleteTask(ctx, taskID)

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
		mockFeed.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := mocks.NewMockTaskRepository()
		mockFeed := mocks.NewMockChangeFeed()

		svc := services.NewTaskService(mockRepo, mockFeed, slog.Default())

		mockRepo.On("Delete", ctx, taskID).Return(nil, apperrors.ErrTaskNotFound)

		err := svc.DeleteTask(ctx, taskID)

		assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
		mockFeed.AssertNotCalled(t, "Emit")
	})
}
