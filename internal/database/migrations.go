package database

import (
	"fmt"
	"log/slog"

	"github.com/taskr/taskr-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the indexes used by task filtering, reporting and the
// event log ordering.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   any
		name    string
		columns string
	}{
		// Task indexes for filtering and reporting
		{&models.Task{}, "idx_tasks_reporter_id", "reporter_id"},
		{&models.Task{}, "idx_tasks_assignee_status", "assignee_id, status"},
		{&models.Task{}, "idx_tasks_category_id", "category_id"},
		{&models.Task{}, "idx_tasks_created_on", "created_on"},

		// Event log is always read per task in creation order
		{&models.TaskEventLog{}, "idx_task_event_logs_task_created", "task_id, created_on"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Debug("created index", "name", idx.name, "table", stmt.Table, "columns", idx.columns)
	}

	return nil
}
