package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Pre-defined errors for domain-specific validation.
var (
	ErrTitleRequired = errors.New("title is required")
)

const (
	// DefaultCategory is assigned when a task is created without one.
	DefaultCategory = "To-Do"

	MaxTitleLength       = 255
	MaxDescriptionLength = 5000
)

// Task is the core domain entity: a tracked to-do item.
type Task struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewTask is a factory function to create a valid new task.
// The store assigns the ID at persistence time; CreatedAt is set here
// so the entity is complete before it crosses the repository boundary.
func NewTask(title, description, category string) (*Task, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}
	if category == "" {
		category = DefaultCategory
	}

	return &Task{
		Title:       title,
		Description: description,
		Category:    category,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// TaskPatch carries the fields a partial update may change. Nil fields
// are left untouched; ID and CreatedAt are immutable and have no place
// here at all.
type TaskPatch struct {
	Title       *string
	Description *string
	Category    *string
}

// IsEmpty reports whether the patch would change nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil
}
