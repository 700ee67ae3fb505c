package services

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskr/taskr-api/internal/models"
	"github.com/taskr/taskr-api/internal/repository"
)

func TestReportService_ForUsername(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	category := createCategory(t, db, "Engineering")

	userRepo := repository.NewUserRepository(db)
	tasks := NewTaskService(repository.NewTaskRepository(db), repository.NewCategoryRepository(db), userRepo, discardLogger())
	reports, err := NewReportService(db, userRepo)
	require.NoError(t, err)

	bobRef := strconv.FormatUint(bob.ID, 10)
	statuses := []models.TaskStatus{models.TaskStatusDone, models.TaskStatusInProgress, models.TaskStatusTodo, models.TaskStatusDone}
	for i, status := range statuses {
		task, err := tasks.Create(ctx, alice.ID, CreateTaskInput{Name: "Task " + strconv.Itoa(i), CategoryID: category.ID})
		require.NoError(t, err)
		_, err = tasks.Assign(ctx, alice.ID, task.ID, bobRef)
		require.NoError(t, err)
		if status != models.TaskStatusTodo {
			_, err = tasks.ChangeStatus(ctx, bob.ID, task.ID, status)
			require.NoError(t, err)
		}
	}
	_, err = tasks.Create(ctx, bob.ID, CreateTaskInput{Name: "Bob's own", CategoryID: category.ID})
	require.NoError(t, err)

	tests := []struct {
		username string
		want     Report
	}{
		{
			username: "alice",
			want:     Report{Username: "alice", Created: 4},
		},
		{
			username: "bob",
			want:     Report{Username: "bob", Created: 1, Assigned: 4, Completed: 2, Incompleted: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			report, err := reports.ForUsername(ctx, tt.username)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *report)
			assert.Equal(t, report.Assigned, report.Completed+report.Incompleted)
		})
	}
}

func TestReportService_UnknownUser(t *testing.T) {
	db := newTestDB(t)
	reports, err := NewReportService(db, repository.NewUserRepository(db))
	require.NoError(t, err)

	_, err = reports.ForUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestBindDriverName(t *testing.T) {
	assert.Equal(t, "sqlite3", bindDriverName("sqlite"))
	assert.Equal(t, "postgres", bindDriverName("postgres"))
	assert.Equal(t, "mysql", bindDriverName("mysql"))
}
