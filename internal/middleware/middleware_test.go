package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskr/taskr-api/internal/constants"
	"github.com/taskr/taskr-api/internal/models"
)

type fakeAuthenticator struct {
	tokens map[string]models.User
	users  map[uint64]models.User
}

func (f fakeAuthenticator) Authenticate(_ context.Context, key string) (*models.User, error) {
	user, ok := f.tokens[key]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return &user, nil
}

func (f fakeAuthenticator) GetUser(_ context.Context, id uint64) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &user, nil
}

func newAuthRouter(authn Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	r.GET("/login/:id", func(c *gin.Context) {
		userID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
		session := sessions.Default(c)
		session.Set(constants.ContextKeyUserID, userID)
		_ = session.Save()
		c.Status(http.StatusOK)
	})
	r.GET("/me", RequireAuth(authn), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	r.GET("/admin", RequireAuth(authn), RequireStaff(authn), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/tasks/:id", RequireTaskID(), func(c *gin.Context) {
		taskID, _ := GetTaskID(c)
		c.JSON(http.StatusOK, gin.H{"task": taskID})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	authn := fakeAuthenticator{
		tokens: map[string]models.User{"goodkey": {ID: 1, Username: "alice"}},
		users:  map[uint64]models.User{1: {ID: 1, Username: "alice"}, 2: {ID: 2, Username: "bob"}},
	}
	r := newAuthRouter(authn)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "no credentials", wantStatus: http.StatusUnauthorized},
		{name: "valid token", header: "Token goodkey", wantStatus: http.StatusOK},
		{name: "scheme is case insensitive", header: "token goodkey", wantStatus: http.StatusOK},
		{name: "unknown token", header: "Token badkey", wantStatus: http.StatusUnauthorized},
		{name: "bearer scheme", header: "Bearer goodkey", wantStatus: http.StatusUnauthorized},
		{name: "missing key", header: "Token ", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func sessionCookies(t *testing.T, r *gin.Engine, userID string) []*http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login/"+userID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestRequireAuth_Session(t *testing.T) {
	r := newAuthRouter(fakeAuthenticator{
		users: map[uint64]models.User{2: {ID: 2, Username: "bob"}},
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, cookie := range sessionCookies(t, r, "2") {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id": 2}`, w.Body.String())
}

func TestRequireAuth_SessionOfDeletedUser(t *testing.T) {
	r := newAuthRouter(fakeAuthenticator{
		users: map[uint64]models.User{2: {ID: 2, Username: "bob"}},
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, cookie := range sessionCookies(t, r, "3") {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The stale session is replaced by an empty one.
	var cleared bool
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == constants.SessionCookieName {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestRequireStaff(t *testing.T) {
	authn := fakeAuthenticator{
		tokens: map[string]models.User{
			"staffkey":  {ID: 1, Username: "admin", IsStaff: true},
			"memberkey": {ID: 2, Username: "bob"},
		},
	}
	r := newAuthRouter(authn)

	for key, want := range map[string]int{
		"staffkey":  http.StatusOK,
		"memberkey": http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Token "+key)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, want, w.Code, key)
	}
}

func TestRequireTaskID(t *testing.T) {
	r := newAuthRouter(fakeAuthenticator{})

	tests := []struct {
		path       string
		wantStatus int
	}{
		{path: "/tasks/12", wantStatus: http.StatusOK},
		{path: "/tasks/0", wantStatus: http.StatusBadRequest},
		{path: "/tasks/-1", wantStatus: http.StatusBadRequest},
		{path: "/tasks/abc", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.wantStatus, w.Code, tt.path)
	}
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(constants.HeaderRequestID)
	assert.Len(t, generated, 36)
	assert.Contains(t, buf.String(), generated)
	assert.Contains(t, buf.String(), `"status":200`)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(constants.HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(constants.HeaderRequestID))
}
