package repository

import (
	"context"

	"github.com/taskr/taskr-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// taskRelations are preloaded whenever a task is returned to callers.
var taskRelations = []string{"Category", "Reporter", "Assignee"}

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create inserts a task and its creation event in one transaction
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task, event *models.TaskEventLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return translateError(err)
		}

		event.TaskID = task.ID
		return NewEventLogRepository(tx).Append(ctx, event)
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.WithContext(ctx).Model(&models.Task{})

	// Apply filters
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.CategoryID != nil {
		query = query.Where("tasks.category_id = ?", *filter.CategoryID)
	}
	if filter.ReporterID != nil {
		query = query.Where("tasks.reporter_id = ?", *filter.ReporterID)
	}
	if filter.AssigneeID != nil {
		query = query.Where("tasks.assignee_id = ?", *filter.AssigneeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.
		Order("tasks.created_on ASC").
		Order("tasks.id ASC").
		Scopes(paginate(filter.Offset, filter.Limit))

	for _, p := range taskRelations {
		listQuery = listQuery.Preload(p)
	}

	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Mutate locks a task, applies fn and persists the change with its event
func (r *GormTaskRepository) Mutate(ctx context.Context, id uint64, fn MutateFunc) (*models.Task, bool, error) {
	var (
		result  *models.Task
		changed bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := lockForUpdate(tx).First(&task, id).Error; err != nil {
			return err
		}

		event, err := fn(&task)
		if err != nil {
			return err
		}
		if event == nil {
			result = &task
			return nil
		}

		if err := tx.Omit(clause.Associations).Save(&task).Error; err != nil {
			return translateError(err)
		}

		event.TaskID = task.ID
		if err := NewEventLogRepository(tx).Append(ctx, event); err != nil {
			return err
		}

		var reloaded models.Task
		query := tx
		for _, p := range taskRelations {
			query = query.Preload(p)
		}
		if err := query.First(&reloaded, task.ID).Error; err != nil {
			return err
		}

		result = &reloaded
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return result, changed, nil
}

// Delete removes a task and its event log
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := lockForUpdate(tx).First(&task, id).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", id).Delete(&models.TaskEventLog{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// CountByCategory counts tasks filed under a category
func (r *GormTaskRepository) CountByCategory(ctx context.Context, categoryID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// CountReferencingUser counts tasks reported by, assigned to or carrying an
// event log entry of a user
func (r *GormTaskRepository) CountReferencingUser(ctx context.Context, userID uint64) (int64, error) {
	db := r.db.WithContext(ctx)
	logged := db.Model(&models.TaskEventLog{}).Select("task_id").Where("user_id = ?", userID)

	var count int64
	err := db.Model(&models.Task{}).
		Where("reporter_id = ? OR assignee_id = ? OR id IN (?)", userID, userID, logged).
		Count(&count).Error
	return count, err
}

// lockForUpdate adds SELECT ... FOR UPDATE where the dialect supports it.
// SQLite serialises writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
