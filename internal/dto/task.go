package dto

import (
	"time"

	"github.com/taskr/taskr-api/internal/models"
	"github.com/taskr/taskr-api/internal/services"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	IsStaff  bool   `json:"is_staff"`
}

// CategoryDTO represents a task category in API responses
type CategoryDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedOn   time.Time `json:"created_on"`
}

// TaskDTO represents a task in API responses. Enumerations are sent as their
// wire values with a display label next to them.
type TaskDTO struct {
	ID              uint64            `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Priority        models.Priority   `json:"priority"`
	PriorityDisplay string            `json:"priority_display"`
	Status          models.TaskStatus `json:"status"`
	StatusDisplay   string            `json:"status_display"`
	CategoryID      uint64            `json:"category_id"`
	ReporterID      uint64            `json:"reporter_id"`
	AssigneeID      *uint64           `json:"assignee_id"`
	CreatedOn       time.Time         `json:"created_on"`
	ModifiedOn      time.Time         `json:"modified_on"`
	Category        *CategoryDTO      `json:"category,omitempty"`
	Reporter        *UserDTO          `json:"reporter,omitempty"`
	Assignee        *UserDTO          `json:"assignee,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// EventDTO represents a task event log entry in API responses
type EventDTO struct {
	ID           uint64           `json:"id"`
	Event        models.EventKind `json:"event"`
	EventDisplay string           `json:"event_display"`
	Description  string           `json:"description"`
	Changes      map[string]any   `json:"changes,omitempty"`
	CreatedOn    time.Time        `json:"created_on"`
	TaskID       uint64           `json:"task"`
	User         UserDTO          `json:"user"`
}

// ReportDTO represents the task counts of a user
type ReportDTO struct {
	Username    string `json:"username"`
	Created     int64  `json:"created"`
	Assigned    int64  `json:"assigned"`
	Completed   int64  `json:"completed"`
	Incompleted int64  `json:"incompleted"`
}

// TokenDTO represents an issued API token
type TokenDTO struct {
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsStaff:  user.IsStaff,
	}
}

// ToCategoryDTO converts a TaskCategory model to CategoryDTO
func ToCategoryDTO(category models.TaskCategory) CategoryDTO {
	return CategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		CreatedOn:   category.CreatedOn,
	}
}

// ToCategoryDTOs converts a slice of categories
func ToCategoryDTOs(categories []models.TaskCategory) []CategoryDTO {
	items := make([]CategoryDTO, len(categories))
	for i, category := range categories {
		items[i] = ToCategoryDTO(category)
	}
	return items
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:              task.ID,
		Name:            task.Name,
		Description:     task.Description,
		Priority:        task.Priority,
		PriorityDisplay: task.Priority.String(),
		Status:          task.Status,
		StatusDisplay:   task.Status.String(),
		CategoryID:      task.CategoryID,
		ReporterID:      task.ReporterID,
		AssigneeID:      task.AssigneeID,
		CreatedOn:       task.CreatedOn,
		ModifiedOn:      task.ModifiedOn,
	}

	// Include relations if preloaded
	if task.Category.ID != 0 {
		category := ToCategoryDTO(task.Category)
		dto.Category = &category
	}
	if task.Reporter.ID != 0 {
		reporter := ToUserDTO(task.Reporter)
		dto.Reporter = &reporter
	}
	if task.Assignee != nil {
		assignee := ToUserDTO(*task.Assignee)
		dto.Assignee = &assignee
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize, totalPages int, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

// ToEventDTO converts a TaskEventLog model to EventDTO
func ToEventDTO(entry models.TaskEventLog) EventDTO {
	return EventDTO{
		ID:           entry.ID,
		Event:        entry.Event,
		EventDisplay: entry.Event.String(),
		Description:  entry.Description,
		Changes:      entry.Changes,
		CreatedOn:    entry.CreatedOn,
		TaskID:       entry.TaskID,
		User:         ToUserDTO(entry.User),
	}
}

// ToReportDTO converts a service report to ReportDTO
func ToReportDTO(report services.Report) ReportDTO {
	return ReportDTO{
		Username:    report.Username,
		Created:     report.Created,
		Assigned:    report.Assigned,
		Completed:   report.Completed,
		Incompleted: report.Incompleted,
	}
}

// ToTokenDTO converts an AuthToken model to TokenDTO
func ToTokenDTO(token models.AuthToken) TokenDTO {
	return TokenDTO{
		Key:       token.Key,
		ExpiresAt: token.ExpiresAt,
	}
}
