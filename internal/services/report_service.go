package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/taskr/taskr-api/internal/models"
	"github.com/taskr/taskr-api/internal/repository"
	"gorm.io/gorm"
)

// Report holds the task counts of one user
type Report struct {
	Username    string `db:"-" json:"username"`
	Created     int64  `db:"created" json:"created"`
	Assigned    int64  `db:"assigned" json:"assigned"`
	Completed   int64  `db:"completed" json:"completed"`
	Incompleted int64  `db:"incompleted" json:"incompleted"`
}

// All four counts come from one statement so they share a snapshot and
// assigned always equals completed + incompleted.
const reportQuery = `
SELECT
	(SELECT COUNT(*) FROM tasks WHERE reporter_id = ?) AS created,
	COUNT(*) AS assigned,
	COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed,
	COALESCE(SUM(CASE WHEN status IN (?, ?) THEN 1 ELSE 0 END), 0) AS incompleted
FROM tasks
WHERE assignee_id = ?`

// ReportService computes per-user task counts
type ReportService struct {
	db       *sqlx.DB
	userRepo repository.UserRepository
}

// NewReportService creates a ReportService sharing the connection pool of db
func NewReportService(db *gorm.DB, userRepo repository.UserRepository) (*ReportService, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	return &ReportService{
		db:       sqlx.NewDb(sqlDB, bindDriverName(db.Dialector.Name())),
		userRepo: userRepo,
	}, nil
}

// ForUsername returns the counts for username
func (s *ReportService) ForUsername(ctx context.Context, username string) (*Report, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	report := Report{Username: user.Username}
	err = s.db.GetContext(ctx, &report, s.db.Rebind(reportQuery),
		user.ID,
		int(models.TaskStatusDone),
		int(models.TaskStatusTodo), int(models.TaskStatusInProgress),
		user.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	return &report, nil
}

// bindDriverName maps gorm dialect names to the driver names sqlx uses to
// pick a placeholder style.
func bindDriverName(dialect string) string {
	if dialect == "sqlite" {
		return "sqlite3"
	}
	return dialect
}
