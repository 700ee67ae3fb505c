package services

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taskr/taskr-api/internal/config"
	"github.com/taskr/taskr-api/internal/database"
	"github.com/taskr/taskr-api/internal/models"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(&config.Config{
		DBDriver: "sqlite",
		DBPath:   "file::memory:?_foreign_keys=on",
		LogLevel: "ERROR",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createCategory(t *testing.T, db *gorm.DB, name string) *models.TaskCategory {
	t.Helper()

	category := &models.TaskCategory{Name: name}
	require.NoError(t, db.Create(category).Error)
	return category
}

func countEvents(t *testing.T, db *gorm.DB, taskID uint64, kind models.EventKind) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.TaskEventLog{}).
		Where("task_id = ? AND event = ?", taskID, kind).
		Count(&count).Error)
	return count
}
