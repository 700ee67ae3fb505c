package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskr/taskr-api/internal/models"
	"github.com/taskr/taskr-api/internal/repository"
)

func newTestAuthService(t *testing.T) (*AuthService, *TaskService) {
	t.Helper()

	db := newTestDB(t)
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	auth := NewAuthService(userRepo, repository.NewTokenRepository(db), taskRepo, AuthOptions{
		TokenTTL:       time.Hour,
		StaffUsernames: []string{"admin"},
	}, discardLogger())
	tasks := NewTaskService(taskRepo, repository.NewCategoryRepository(db), userRepo, discardLogger())
	return auth, tasks
}

func TestAuthService_SignupAndLogin(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuthService(t)

	user, err := auth.Signup(ctx, SignupInput{Username: "alice", Email: "alice@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.False(t, user.IsStaff)
	assert.NotEqual(t, "supersecret", user.PasswordHash)

	admin, err := auth.Signup(ctx, SignupInput{Username: "admin", Password: "supersecret"})
	require.NoError(t, err)
	assert.True(t, admin.IsStaff)

	_, err = auth.Signup(ctx, SignupInput{Username: "alice", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = auth.Signup(ctx, SignupInput{Username: "carol", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	loggedIn, err := auth.Login(ctx, LoginInput{Username: "alice", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, err = auth.Login(ctx, LoginInput{Username: "alice", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Tokens(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuthService(t)

	user, err := auth.Signup(ctx, SignupInput{Username: "alice", Password: "supersecret"})
	require.NoError(t, err)

	token, err := auth.IssueToken(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, token.Key, 40)

	resolved, err := auth.Authenticate(ctx, token.Key)
	require.NoError(t, err)
	assert.Equal(t, "alice", resolved.Username)

	_, err = auth.Authenticate(ctx, "unknown")
	assert.ErrorIs(t, err, ErrInvalidToken)

	auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = auth.Authenticate(ctx, token.Key)
	assert.ErrorIs(t, err, ErrInvalidToken)

	purged, err := auth.PurgeExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestAuthService_DeleteUser(t *testing.T) {
	ctx := context.Background()
	auth, tasks := newTestAuthService(t)

	alice, err := auth.Signup(ctx, SignupInput{Username: "alice", Password: "supersecret"})
	require.NoError(t, err)
	_, err = auth.Signup(ctx, SignupInput{Username: "bob", Password: "supersecret"})
	require.NoError(t, err)

	task, err := tasks.Create(ctx, alice.ID, CreateTaskInput{Name: "Pinned", CategoryID: 1})
	require.NoError(t, err)

	assert.ErrorIs(t, auth.DeleteUser(ctx, "alice"), ErrUserInUse)
	assert.NoError(t, auth.DeleteUser(ctx, "bob"))
	assert.ErrorIs(t, auth.DeleteUser(ctx, "bob"), ErrUserNotFound)

	require.NoError(t, tasks.Delete(ctx, alice.ID, task.ID))
	assert.NoError(t, auth.DeleteUser(ctx, "alice"))
}

func TestAuthService_DeleteUserWithLoggedEvents(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	auth := NewAuthService(userRepo, repository.NewTokenRepository(db), taskRepo, AuthOptions{TokenTTL: time.Hour}, discardLogger())
	tasks := NewTaskService(taskRepo, repository.NewCategoryRepository(db), userRepo, discardLogger())

	alice := createUser(t, db, "alice")
	carol := createUser(t, db, "carol")

	task, err := tasks.Create(ctx, alice.ID, CreateTaskInput{Name: "Shared", CategoryID: 1})
	require.NoError(t, err)
	_, err = tasks.ChangeStatus(ctx, carol.ID, task.ID, models.TaskStatusDone)
	require.NoError(t, err)

	assert.ErrorIs(t, auth.DeleteUser(ctx, "carol"), ErrUserInUse)
	assert.Equal(t, int64(1), countEvents(t, db, task.ID, models.EventCreated))
	assert.Equal(t, int64(1), countEvents(t, db, task.ID, models.EventStatusChanged))
}
