package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskr/taskr-api/internal/constants"
	apierrors "github.com/taskr/taskr-api/internal/errors"
)

// RequireTaskID parses the :id path parameter and stores it in the context.
// Whether the task exists is decided by the service.
func RequireTaskID() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || taskID == 0 {
			apierrors.BadRequest(c, "Invalid task ID")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, taskID)
		c.Next()
	}
}

// GetTaskID retrieves the task ID set by RequireTaskID
func GetTaskID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return 0, false
	}
	taskID, ok := v.(uint64)
	return taskID, ok
}
