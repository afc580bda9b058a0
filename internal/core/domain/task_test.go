package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/task-tracker-backend/internal/core/domain"
)

func TestNewTask(t *testing.T) {
	t.Run("creates task with all fields", func(t *testing.T) {
		task, err := domain.NewTask("Ship it", "before friday", "In Progress")

		require.NoError(t, err)
		assert.Equal(t, "Ship it", task.Title)
		assert.Equal(t, "before friday", task.Description)
		assert.Equal(t, "In Progress", task.Category)
		assert.False(t, task.CreatedAt.IsZero())
	})

	t.Run("defaults category when empty", func(t *testing.T) {
		task, err := domain.NewTask("Ship it", "", "")

		require.NoError(t, err)
		assert.Equal(t, domain.DefaultCategory, task.Category)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		task, err := domain.NewTask("", "desc", "cat")

		assert.Nil(t, task)
		assert.ErrorIs(t, err, domain.ErrTitleRequired)
	})
}

func TestTaskPatch_IsEmpty(t *testing.T) {
	title := "new title"
	empty := ""

	assert.True(t, domain.TaskPatch{}.IsEmpty())
	assert.False(t, domain.TaskPatch{Title: &title}.IsEmpty())

	// A present-but-empty field still counts as a change request.
	assert.False(t, domain.TaskPatch{Description: &empty}.IsEmpty())
}
