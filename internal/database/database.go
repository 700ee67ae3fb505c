package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/taskr/taskr-api/internal/config"
	"github.com/taskr/taskr-api/internal/constants"
	"github.com/taskr/taskr-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Connect opens the configured database. The returned handle is passed
// explicitly to every repository.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN())
	default:
		dialector = mysql.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger(cfg.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.DBDriver == "sqlite" {
		// SQLite has a single writer; one connection also keeps in-memory
		// databases from splitting across connections.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	slog.Info("database connection established", "driver", cfg.DBDriver)
	return db, nil
}

func newLogger(level string) logger.Interface {
	logLevel := logger.Warn
	if level == "DEBUG" {
		logLevel = logger.Info
	}
	return logger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelDebug),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// Migrate creates the schema, its indexes and the default category.
func Migrate(db *gorm.DB) error {
	slog.Info("running database migrations")
	err := db.AutoMigrate(
		&models.User{},
		&models.TaskCategory{},
		&models.Task{},
		&models.TaskEventLog{},
		&models.AuthToken{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db); err != nil {
		return err
	}

	if err := SeedDefaults(db); err != nil {
		return err
	}

	slog.Info("database migrations completed")
	return nil
}

// SeedDefaults inserts the default task category when it is missing.
func SeedDefaults(db *gorm.DB) error {
	category := models.TaskCategory{
		Name:        constants.DefaultCategoryName,
		Description: "Tasks that do not belong anywhere else",
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&category).Error
	if err != nil {
		return fmt.Errorf("failed to seed default category: %w", err)
	}
	return nil
}
