package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/taskr/taskr-api/internal/constants"
	"github.com/taskr/taskr-api/internal/models"
	"github.com/taskr/taskr-api/internal/repository"
	"gorm.io/gorm"
)

// CategoryService manages task categories
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	taskRepo     repository.TaskRepository
	log          *slog.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository, taskRepo repository.TaskRepository, log *slog.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		taskRepo:     taskRepo,
		log:          log,
	}
}

// CreateCategoryInput represents input for creating a category
type CreateCategoryInput struct {
	Name        string
	Description string
}

// List returns every category
func (s *CategoryService) List(ctx context.Context) ([]models.TaskCategory, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Create adds a category with a unique name
func (s *CategoryService) Create(ctx context.Context, input CreateCategoryInput) (*models.TaskCategory, error) {
	verr := &ValidationError{}

	name := strings.TrimSpace(input.Name)
	switch {
	case name == "":
		verr.Add("name", "This field may not be blank.")
	case utf8.RuneCountInString(name) > constants.MaxCategoryNameLength:
		verr.Add("name", fmt.Sprintf("Ensure this field has no more than %d characters.", constants.MaxCategoryNameLength))
	default:
		if _, err := s.categoryRepo.FindByName(ctx, name); err == nil {
			verr.Add("name", "task category with this name already exists.")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check category name: %w", err)
		}
	}
	if utf8.RuneCountInString(input.Description) > constants.MaxCategoryDescriptionLength {
		verr.Add("description", fmt.Sprintf("Ensure this field has no more than %d characters.", constants.MaxCategoryDescriptionLength))
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	category := &models.TaskCategory{
		Name:        name,
		Description: input.Description,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.log.InfoContext(ctx, "category created", "category_id", category.ID, "name", category.Name)

	return category, nil
}

// Delete removes a category that no task uses
func (s *CategoryService) Delete(ctx context.Context, categoryID uint64) error {
	count, err := s.taskRepo.CountByCategory(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("failed to count tasks: %w", err)
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if err := s.categoryRepo.Delete(ctx, categoryID); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrCategoryNotFound
		case errors.Is(err, repository.ErrReferenced):
			return ErrCategoryInUse
		default:
			return fmt.Errorf("failed to delete category: %w", err)
		}
	}

	s.log.InfoContext(ctx, "category deleted", "category_id", categoryID)

	return nil
}
