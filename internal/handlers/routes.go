package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskr/taskr-api/internal/middleware"
)

// Routes bundles the handlers mounted on the API.
type Routes struct {
	Auth       *AuthHandler
	Tasks      *TaskHandler
	Categories *CategoryHandler
	Reports    *ReportHandler
	Authn      middleware.Authenticator
}

// Register mounts every endpoint on r.
func (rt Routes) Register(r *gin.Engine) {
	requireAuth := middleware.RequireAuth(rt.Authn)
	requireStaff := middleware.RequireStaff(rt.Authn)
	requireTaskID := middleware.RequireTaskID()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task tracking API is running",
		})
	})

	api := r.Group("/api")
	{
		api.GET("/checkpoint", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "This is a test message"})
		})

		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", rt.Auth.Signup)
			auth.POST("/login", rt.Auth.Login)
			auth.POST("/logout", rt.Auth.Logout)
			auth.GET("/me", requireAuth, rt.Auth.GetCurrentUser)
			auth.POST("/token", requireAuth, rt.Auth.IssueToken)
		}

		users := api.Group("/users")
		users.Use(requireAuth, requireStaff)
		{
			users.DELETE("/:username", rt.Auth.DeleteUser)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", rt.Tasks.ListTasks)
			tasks.POST("", rt.Tasks.CreateTask)
			tasks.POST("/generate", rt.Tasks.GenerateTasks)
			tasks.GET("/:id", requireTaskID, rt.Tasks.GetTask)
			tasks.PUT("/:id", requireTaskID, rt.Tasks.UpdateTask)
			tasks.PATCH("/:id", requireTaskID, rt.Tasks.UpdateTask)
			tasks.DELETE("/:id", requireTaskID, rt.Tasks.DeleteTask)
			tasks.POST("/:id/status", requireTaskID, rt.Tasks.ChangeStatus)
			tasks.POST("/:id/assign", requireTaskID, rt.Tasks.AssignTask)
			tasks.GET("/:id/events", requireTaskID, rt.Tasks.ListEvents)
		}

		categories := api.Group("/categories")
		categories.Use(requireAuth)
		{
			categories.GET("", rt.Categories.ListCategories)
			categories.POST("", requireStaff, rt.Categories.CreateCategory)
			categories.DELETE("/:id", requireStaff, rt.Categories.DeleteCategory)
		}

		reports := api.Group("/reports")
		reports.Use(requireAuth)
		{
			reports.GET("/:username", rt.Reports.GetReport)
		}
	}
}
