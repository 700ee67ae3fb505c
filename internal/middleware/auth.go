package middleware

import (
	"context"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/taskr/taskr-api/internal/constants"
	apierrors "github.com/taskr/taskr-api/internal/errors"
	"github.com/taskr/taskr-api/internal/models"
)

// Authenticator resolves API tokens and user ids to users
type Authenticator interface {
	Authenticate(ctx context.Context, key string) (*models.User, error)
	GetUser(ctx context.Context, id uint64) (*models.User, error)
}

// RequireAuth accepts a session login or an "Authorization: Token <key>"
// header and stores the actor's user ID in the context
func RequireAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if raw := session.Get(constants.ContextKeyUserID); raw != nil {
			c.Set(constants.ContextKeyUserID, raw)
			user, ok := sessionUser(c, authn)
			if !ok {
				// The account is gone; drop the stale login.
				session.Clear()
				_ = session.Save()
				apierrors.Unauthorized(c, "Session is no longer valid")
				c.Abort()
				return
			}

			c.Set(constants.ContextKeyUserID, user.ID)
			c.Set(constants.ContextKeyUser, user)
			c.Next()
			return
		}

		key, ok := tokenFromHeader(c.GetHeader("Authorization"))
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := authn.Authenticate(c.Request.Context(), key)
		if err != nil {
			apierrors.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, *user)
		c.Next()
	}
}

// RequireStaff allows only staff users through. It must run after RequireAuth.
func RequireStaff(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, authn)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !user.IsStaff {
			apierrors.Forbidden(c, "Staff access required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

func currentUser(c *gin.Context, authn Authenticator) (models.User, bool) {
	if v, exists := c.Get(constants.ContextKeyUser); exists {
		if user, ok := v.(models.User); ok {
			return user, true
		}
	}

	userID, exists := GetUserID(c)
	if !exists {
		return models.User{}, false
	}

	user, err := authn.GetUser(c.Request.Context(), userID)
	if err != nil {
		return models.User{}, false
	}

	c.Set(constants.ContextKeyUser, *user)
	return *user, true
}

func sessionUser(c *gin.Context, authn Authenticator) (models.User, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		return models.User{}, false
	}

	user, err := authn.GetUser(c.Request.Context(), userID)
	if err != nil {
		return models.User{}, false
	}
	return *user, true
}

func tokenFromHeader(header string) (string, bool) {
	scheme, key, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, constants.TokenAuthScheme) {
		return "", false
	}
	key = strings.TrimSpace(key)
	return key, key != ""
}
