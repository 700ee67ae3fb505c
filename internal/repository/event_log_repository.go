package repository

import (
	"context"
	"fmt"

	"github.com/taskr/taskr-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEventLogRepository is a GORM implementation of EventLogRepository
type GormEventLogRepository struct {
	db *gorm.DB
}

// NewEventLogRepository creates a new EventLogRepository. Pass a transaction
// handle to append inside the caller's transaction.
func NewEventLogRepository(db *gorm.DB) EventLogRepository {
	return &GormEventLogRepository{db: db}
}

// Append stores a new entry
func (r *GormEventLogRepository) Append(ctx context.Context, entry *models.TaskEventLog) error {
	if !entry.Event.Valid() {
		return fmt.Errorf("append event: unknown event kind %d", entry.Event)
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error; err != nil {
		return fmt.Errorf("append event: %w", translateError(err))
	}
	return nil
}

// ListForTask returns a window of a task's entries in creation order
func (r *GormEventLogRepository) ListForTask(ctx context.Context, taskID uint64, offset, limit int) ([]models.TaskEventLog, error) {
	var entries []models.TaskEventLog
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("task_id = ?", taskID).
		Order("created_on ASC").
		Order("id ASC").
		Scopes(paginate(offset, limit)).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
