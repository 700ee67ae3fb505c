package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taskr/taskr-api/internal/constants"
)

// RequestLogger tags every request with an id and writes one access log
// line when it completes
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(constants.ContextRequestID, requestID)
		c.Header(constants.HeaderRequestID, requestID)

		start := time.Now()
		c.Next()

		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		}
		if userID, ok := GetUserID(c); ok {
			attrs = append(attrs, "user_id", userID)
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Error("request", attrs...)
		case len(c.Errors) > 0:
			log.Warn("request", append(attrs, "errors", c.Errors.String())...)
		default:
			log.Info("request", attrs...)
		}
	}
}
