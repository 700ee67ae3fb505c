package handlers

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/taskr/taskr-api/internal/config"
	"github.com/taskr/taskr-api/internal/constants"
	"github.com/taskr/taskr-api/internal/database"
	"github.com/taskr/taskr-api/internal/models"
	"github.com/taskr/taskr-api/internal/repository"
	"github.com/taskr/taskr-api/internal/services"
	"gorm.io/gorm"
)

type testEnv struct {
	db          *gorm.DB
	authService *services.AuthService
	taskService *services.TaskService
	routes      Routes
	router      *gin.Engine
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	taskRepo := repository.NewTaskRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	userRepo := repository.NewUserRepository(db)

	authService := services.NewAuthService(userRepo, repository.NewTokenRepository(db), taskRepo, services.AuthOptions{
		TokenTTL:       time.Hour,
		StaffUsernames: []string{"admin"},
	}, logger)
	taskService := services.NewTaskService(taskRepo, categoryRepo, userRepo, logger)
	reportService, err := services.NewReportService(db, userRepo)
	require.NoError(t, err)

	routes := Routes{
		Auth:       NewAuthHandler(authService),
		Tasks:      NewTaskHandler(taskService, services.NewEventLogService(taskRepo, repository.NewEventLogRepository(db)), nil),
		Categories: NewCategoryHandler(services.NewCategoryService(categoryRepo, taskRepo, logger)),
		Reports:    NewReportHandler(reportService),
		Authn:      authService,
	}

	router := gin.New()
	router.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	routes.Register(router)

	return testEnv{
		db:          db,
		authService: authService,
		taskService: taskService,
		routes:      routes,
		router:      router,
	}
}

func (env testEnv) signup(t *testing.T, username string) *models.User {
	t.Helper()

	user, err := env.authService.Signup(context.Background(), services.SignupInput{
		Username: username,
		Password: "supersecret",
	})
	require.NoError(t, err)
	return user
}

func (env testEnv) token(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := env.authService.IssueToken(context.Background(), user.ID)
	require.NoError(t, err)
	return token.Key
}

// do sends a request through the full router authenticated with token.
func (env testEnv) do(method, url string, body []byte, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", constants.TokenAuthScheme+" "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}
