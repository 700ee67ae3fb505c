package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/taskr/taskr-api/internal/constants"
	"github.com/taskr/taskr-api/internal/models"
	"github.com/taskr/taskr-api/internal/repository"
	"gorm.io/gorm"
)

// TaskService is the only writer of tasks. Every accepted mutation is stored
// together with exactly one event log entry.
type TaskService struct {
	taskRepo     repository.TaskRepository
	categoryRepo repository.CategoryRepository
	userRepo     repository.UserRepository
	log          *slog.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, categoryRepo repository.CategoryRepository, userRepo repository.UserRepository, log *slog.Logger) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		log:          log,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status     *models.TaskStatus
	Priority   *models.Priority
	CategoryID *uint64
	ReporterID *uint64
	AssigneeID *uint64
	Offset     int
	Limit      int
}

// CreateTaskInput represents input for creating a task. There is no status
// or reporter: new tasks start as Todo, reported by the actor.
type CreateTaskInput struct {
	Name        string
	Description string
	CategoryID  uint64
	Priority    *models.Priority
	AssigneeID  *uint64
}

// EditTaskInput holds the fields Edit may touch. Nil means unchanged.
type EditTaskInput struct {
	Name        *string
	Description *string
	CategoryID  *uint64
	Priority    *models.Priority
}

// ListTasks returns tasks matching the filters
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		Status:     input.Status,
		Priority:   input.Priority,
		CategoryID: input.CategoryID,
		ReporterID: input.ReporterID,
		AssigneeID: input.AssigneeID,
		Offset:     input.Offset,
		Limit:      input.Limit,
	}

	tasks, total, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with its category, reporter and assignee
func (s *TaskService) GetTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, "Category", "Reporter", "Assignee")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// Create stores a new task reported by actorID
func (s *TaskService) Create(ctx context.Context, actorID uint64, input CreateTaskInput) (*models.Task, error) {
	verr := &ValidationError{}

	name := strings.TrimSpace(input.Name)
	validateName(verr, name)
	validateDescription(verr, input.Description)

	priority := models.PriorityMedium
	if input.Priority != nil {
		priority = *input.Priority
		if !priority.Valid() {
			verr.Add("priority", fmt.Sprintf("%q is not a valid choice.", strconv.Itoa(int(priority))))
		}
	}

	if input.CategoryID == 0 {
		verr.Add("category", "This field is required.")
	} else if err := s.ensureCategory(ctx, verr, input.CategoryID); err != nil {
		return nil, err
	}

	if input.AssigneeID != nil {
		if _, err := s.userRepo.FindByID(ctx, *input.AssigneeID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to find assignee: %w", err)
			}
			verr.Add("assignee", invalidPK(*input.AssigneeID))
		}
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	task := &models.Task{
		Name:        name,
		Description: input.Description,
		Priority:    priority,
		Status:      models.TaskStatusTodo,
		CategoryID:  input.CategoryID,
		ReporterID:  actorID,
		AssigneeID:  input.AssigneeID,
	}
	event := &models.TaskEventLog{
		Event:       models.EventCreated,
		Description: "Task created.",
		UserID:      actorID,
	}

	if err := s.taskRepo.Create(ctx, task, event); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.log.InfoContext(ctx, "task created", "task_id", task.ID, "actor_id", actorID)

	return s.GetTask(ctx, task.ID)
}

// Edit applies name, description, category and priority changes. Status,
// reporter and assignee have their own operations and cannot be edited here.
func (s *TaskService) Edit(ctx context.Context, actorID, taskID uint64, input EditTaskInput) (*models.Task, error) {
	verr := &ValidationError{}

	var name string
	if input.Name != nil {
		name = strings.TrimSpace(*input.Name)
		validateName(verr, name)
	}
	if input.Description != nil {
		validateDescription(verr, *input.Description)
	}
	if input.Priority != nil && !input.Priority.Valid() {
		verr.Add("priority", fmt.Sprintf("%q is not a valid choice.", strconv.Itoa(int(*input.Priority))))
	}
	if input.CategoryID != nil {
		if err := s.ensureCategory(ctx, verr, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	task, _, err := s.taskRepo.Mutate(ctx, taskID, func(task *models.Task) (*models.TaskEventLog, error) {
		changes := map[string]any{}

		if input.Name != nil && task.Name != name {
			changes["name"] = change(task.Name, name)
			task.Name = name
		}
		if input.Description != nil && task.Description != *input.Description {
			changes["description"] = change(task.Description, *input.Description)
			task.Description = *input.Description
		}
		if input.CategoryID != nil && task.CategoryID != *input.CategoryID {
			changes["category"] = change(task.CategoryID, *input.CategoryID)
			task.CategoryID = *input.CategoryID
		}
		if input.Priority != nil && task.Priority != *input.Priority {
			changes["priority"] = change(task.Priority, *input.Priority)
			task.Priority = *input.Priority
		}

		return &models.TaskEventLog{
			Event:       models.EventEdited,
			Description: "Task edited.",
			Changes:     changes,
			UserID:      actorID,
		}, nil
	})
	if err != nil {
		return nil, s.mutationError("edit", err)
	}

	s.log.InfoContext(ctx, "task edited", "task_id", taskID, "actor_id", actorID)

	return task, nil
}

// ChangeStatus moves a task to status. Any status may follow any other;
// asking for the current status returns the task with ErrNoChange.
func (s *TaskService) ChangeStatus(ctx context.Context, actorID, taskID uint64, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, fieldError("status", fmt.Sprintf("%q is not a valid choice.", strconv.Itoa(int(status))))
	}

	task, changed, err := s.taskRepo.Mutate(ctx, taskID, func(task *models.Task) (*models.TaskEventLog, error) {
		if task.Status == status {
			return nil, nil
		}

		previous := task.Status
		task.Status = status

		return &models.TaskEventLog{
			Event:       models.EventStatusChanged,
			Description: fmt.Sprintf("Task status changed to %q.", status.String()),
			Changes:     map[string]any{"status": change(previous, status)},
			UserID:      actorID,
		}, nil
	})
	if err != nil {
		return nil, s.mutationError("change status of", err)
	}
	if !changed {
		return task, ErrNoChange
	}

	s.log.InfoContext(ctx, "task status changed", "task_id", taskID, "actor_id", actorID, "status", status.String())

	return task, nil
}

// Assign sets the assignee from a user id reference. An empty, malformed or
// unknown reference unassigns the task. Assigning the current assignee
// returns the task with ErrNoChange.
func (s *TaskService) Assign(ctx context.Context, actorID, taskID uint64, userRef string) (*models.Task, error) {
	assignee, err := s.resolveAssignee(ctx, userRef)
	if err != nil {
		return nil, err
	}

	var assigneeID *uint64
	description := "Task unassigned."
	if assignee != nil {
		assigneeID = &assignee.ID
		description = fmt.Sprintf("Task assigned to %s.", assignee.Username)
	}

	task, changed, err := s.taskRepo.Mutate(ctx, taskID, func(task *models.Task) (*models.TaskEventLog, error) {
		if task.HasAssignee(assigneeID) {
			return nil, nil
		}

		previous := task.AssigneeID
		task.AssigneeID = assigneeID

		return &models.TaskEventLog{
			Event:       models.EventAssigned,
			Description: description,
			Changes:     map[string]any{"assignee": change(previous, assigneeID)},
			UserID:      actorID,
		}, nil
	})
	if err != nil {
		return nil, s.mutationError("assign", err)
	}
	if !changed {
		return task, ErrNoChange
	}

	s.log.InfoContext(ctx, "task assigned", "task_id", taskID, "actor_id", actorID, "assignee_id", assigneeID)

	return task, nil
}

// Delete removes a task together with its event log
func (s *TaskService) Delete(ctx context.Context, actorID, taskID uint64) error {
	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.log.InfoContext(ctx, "task deleted", "task_id", taskID, "actor_id", actorID)

	return nil
}

// resolveAssignee looks the user up before any transaction starts.
func (s *TaskService) resolveAssignee(ctx context.Context, userRef string) (*models.User, error) {
	userRef = strings.TrimSpace(userRef)
	if userRef == "" {
		return nil, nil
	}

	userID, err := strconv.ParseUint(userRef, 10, 64)
	if err != nil {
		return nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find assignee: %w", err)
	}

	return user, nil
}

func (s *TaskService) ensureCategory(ctx context.Context, verr *ValidationError, categoryID uint64) error {
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to find category: %w", err)
		}
		verr.Add("category", invalidPK(categoryID))
	}
	return nil
}

func (s *TaskService) mutationError(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTaskNotFound
	}
	if errors.Is(err, repository.ErrReferenced) {
		return fieldError("non_field_errors", "A referenced row no longer exists.")
	}
	return fmt.Errorf("failed to %s task: %w", op, err)
}

func validateName(verr *ValidationError, name string) {
	switch {
	case name == "":
		verr.Add("name", "This field may not be blank.")
	case utf8.RuneCountInString(name) > constants.MaxTaskNameLength:
		verr.Add("name", fmt.Sprintf("Ensure this field has no more than %d characters.", constants.MaxTaskNameLength))
	}
}

func validateDescription(verr *ValidationError, description string) {
	if utf8.RuneCountInString(description) > constants.MaxTaskDescriptionLength {
		verr.Add("description", fmt.Sprintf("Ensure this field has no more than %d characters.", constants.MaxTaskDescriptionLength))
	}
}

func invalidPK(id uint64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}

// change renders a before/after pair for TaskEventLog.Changes.
func change(from, to any) map[string]any {
	return map[string]any{"from": from, "to": to}
}
