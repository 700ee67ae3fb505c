package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskr/taskr-api/internal/dto"
	apierrors "github.com/taskr/taskr-api/internal/errors"
	"github.com/taskr/taskr-api/internal/middleware"
	"github.com/taskr/taskr-api/internal/models"
	"github.com/taskr/taskr-api/internal/services"
	"github.com/taskr/taskr-api/internal/utils"
)

type TaskHandler struct {
	taskService  *services.TaskService
	eventService *services.EventLogService
	aiService    *services.AIService
}

func NewTaskHandler(taskService *services.TaskService, eventService *services.EventLogService, aiService *services.AIService) *TaskHandler {
	return &TaskHandler{
		taskService:  taskService,
		eventService: eventService,
		aiService:    aiService,
	}
}

// ListTasks returns tasks, optionally filtered by status, priority,
// category, reporter and assignee
func (h *TaskHandler) ListTasks(c *gin.Context) {
	input := services.ListTasksInput{}

	if v := c.Query("status"); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil || !models.TaskStatus(n).Valid() {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		status := models.TaskStatus(n)
		input.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil || !models.Priority(n).Valid() {
			apierrors.BadRequest(c, "Invalid priority")
			return
		}
		priority := models.Priority(n)
		input.Priority = &priority
	}

	for param, target := range map[string]**uint64{
		"category_id": &input.CategoryID,
		"reporter_id": &input.ReporterID,
		"assignee_id": &input.AssigneeID,
	} {
		v := c.Query(param)
		if v == "" {
			continue
		}
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid "+param)
			return
		}
		*target = &id
	}

	// Get pagination parameters
	params := utils.GetPaginationParams(c)
	input.Offset = params.Offset
	input.Limit = params.Limit

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, params.TotalPages(total), total))
}

// GetTask returns a single task
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := middleware.GetTaskID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task reported by the current user. Status and
// reporter in the body are ignored.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Name        string           `json:"name"`
		Description string           `json:"description"`
		Category    uint64           `json:"category"`
		Priority    *models.Priority `json:"priority"`
		Assignee    *uint64          `json:"assignee"`
	}

	var req CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), userID, services.CreateTaskInput{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.Category,
		Priority:    req.Priority,
		AssigneeID:  req.Assignee,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask edits name, description, category and priority. Any other
// field in the body is ignored.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := middleware.GetTaskID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	type UpdateTaskRequest struct {
		Name        *string          `json:"name"`
		Description *string          `json:"description"`
		Category    *uint64          `json:"category"`
		Priority    *models.Priority `json:"priority"`
	}

	var req UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Edit(c.Request.Context(), userID, taskID, services.EditTaskInput{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.Category,
		Priority:    req.Priority,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task and its events
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := middleware.GetTaskID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), userID, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": strconv.FormatUint(taskID, 10)})
}

// ChangeStatus moves a task to another status. 204 when it already had it.
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := middleware.GetTaskID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	type ChangeStatusRequest struct {
		Status *models.TaskStatus `json:"status"`
	}

	var req ChangeStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Status == nil {
		apierrors.ValidationFailed(c, map[string][]string{"status": {"This field is required."}})
		return
	}

	task, err := h.taskService.ChangeStatus(c.Request.Context(), userID, taskID, *req.Status)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// AssignTask sets or clears the assignee. user_id may be a number, a
// numeric string, empty or null; anything that does not name an existing
// user unassigns. 204 when the assignee is unchanged.
func (h *TaskHandler) AssignTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := middleware.GetTaskID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	type AssignUserRequest struct {
		UserID json.RawMessage `json:"user_id"`
	}

	var req AssignUserRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
	}

	task, err := h.taskService.Assign(c.Request.Context(), userID, taskID, userRef(req.UserID))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// ListEvents returns the event log of a task, oldest first
func (h *TaskHandler) ListEvents(c *gin.Context) {
	taskID, ok := middleware.GetTaskID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	seq, err := h.eventService.ListForTask(c.Request.Context(), taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	events := []dto.EventDTO{}
	for entry, err := range seq {
		if err != nil {
			respondTaskError(c, err)
			return
		}
		events = append(events, dto.ToEventDTO(entry))
	}

	c.JSON(http.StatusOK, events)
}

// GenerateTasks proposes task drafts from free text using AI
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateTasksRequest
	if !bindJSON(c, &req) {
		return
	}

	drafts, err := h.aiService.GenerateDrafts(c.Request.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAIServiceNotConfigured):
			apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
		case errors.Is(err, services.ErrAINoTasksGenerated), errors.Is(err, services.ErrAINoValidTasks):
			apierrors.BadRequest(c, err.Error())
		default:
			_ = c.Error(err)
			apierrors.InternalError(c, "Failed to generate tasks")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": drafts,
	})
}

// bindJSON decodes the request body into obj. A value of the wrong JSON type
// is reported against its field; any other decode failure is a bad request.
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		apierrors.ValidationFailed(c, map[string][]string{typeErr.Field: {typeErrorMessage(typeErr)}})
		return false
	}

	apierrors.BadRequest(c, "Invalid request body")
	return false
}

func typeErrorMessage(err *json.UnmarshalTypeError) string {
	switch err.Type.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if strings.HasPrefix(err.Value, "number") {
			return fmt.Sprintf("%s is out of range.", strings.TrimPrefix(err.Value, "number "))
		}
		return "A valid integer is required."
	case reflect.String:
		return "Not a valid string."
	default:
		return "Invalid value."
	}
}

// userRef renders the user_id field of an assign request as the string
// reference the service resolves.
func userRef(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}

	switch ref := v.(type) {
	case string:
		return strings.TrimSpace(ref)
	case float64:
		return strconv.FormatFloat(ref, 'f', -1, 64)
	default:
		return ""
	}
}

func respondTaskError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNoChange):
		c.Status(http.StatusNoContent)
		c.Writer.WriteHeaderNow()
	case errors.As(err, &verr):
		apierrors.ValidationFailed(c, verr.Fields)
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
