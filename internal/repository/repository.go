package repository

import (
	"context"
	"time"

	"github.com/taskr/taskr-api/internal/models"
)

// MutateFunc applies a change to a task loaded under a row lock and returns
// the audit entry describing it. Returning a nil entry leaves the task untouched.
type MutateFunc func(task *models.Task) (*models.TaskEventLog, error)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create inserts a task and its creation event in one transaction
	Create(ctx context.Context, task *models.Task, event *models.TaskEventLog) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Mutate locks a task, applies fn and persists the change together with
	// the returned event. changed is false when fn returned no event.
	Mutate(ctx context.Context, id uint64, fn MutateFunc) (task *models.Task, changed bool, err error)

	// Delete removes a task and its event log
	Delete(ctx context.Context, id uint64) error

	// CountByCategory counts tasks filed under a category
	CountByCategory(ctx context.Context, categoryID uint64) (int64, error)

	// CountReferencingUser counts tasks reported by, assigned to or logged by a user
	CountReferencingUser(ctx context.Context, userID uint64) (int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Status     *models.TaskStatus
	Priority   *models.Priority
	CategoryID *uint64
	ReporterID *uint64
	AssigneeID *uint64
	Offset     int
	Limit      int
}

// EventLogRepository defines the interface for the append-only task event log
type EventLogRepository interface {
	// Append stores a new entry
	Append(ctx context.Context, entry *models.TaskEventLog) error

	// ListForTask returns a window of a task's entries in creation order
	ListForTask(ctx context.Context, taskID uint64, offset, limit int) ([]models.TaskEventLog, error)
}

// CategoryRepository defines the interface for task category data access
type CategoryRepository interface {
	// Create creates a new category
	Create(ctx context.Context, category *models.TaskCategory) error

	// FindByID finds a category by ID
	FindByID(ctx context.Context, id uint64) (*models.TaskCategory, error)

	// FindByName finds a category by its unique name
	FindByName(ctx context.Context, name string) (*models.TaskCategory, error)

	// List returns all categories in creation order
	List(ctx context.Context) ([]models.TaskCategory, error)

	// Delete removes a category; ErrReferenced while tasks use it
	Delete(ctx context.Context, id uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// Delete removes a user; ErrReferenced while tasks use it
	Delete(ctx context.Context, id uint64) error
}

// TokenRepository defines the interface for API token data access
type TokenRepository interface {
	// Create stores a new token
	Create(ctx context.Context, token *models.AuthToken) error

	// FindByKey finds a token and its user
	FindByKey(ctx context.Context, key string) (*models.AuthToken, error)

	// DeleteExpired removes tokens that expired before now
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
