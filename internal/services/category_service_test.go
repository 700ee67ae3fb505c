package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskr/taskr-api/internal/constants"
	"github.com/taskr/taskr-api/internal/repository"
)

func TestCategoryService(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	alice := createUser(t, db, "alice")

	taskRepo := repository.NewTaskRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	categories := NewCategoryService(categoryRepo, taskRepo, discardLogger())
	tasks := NewTaskService(taskRepo, categoryRepo, repository.NewUserRepository(db), discardLogger())

	t.Run("seeded default", func(t *testing.T) {
		list, err := categories.List(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, list)
		assert.Equal(t, constants.DefaultCategoryName, list[0].Name)
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		_, err := categories.Create(ctx, CreateCategoryInput{Name: constants.DefaultCategoryName})

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "name")
	})

	t.Run("blank name rejected", func(t *testing.T) {
		_, err := categories.Create(ctx, CreateCategoryInput{Name: " "})

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "name")
	})

	t.Run("referenced category cannot be deleted", func(t *testing.T) {
		category, err := categories.Create(ctx, CreateCategoryInput{Name: "Busy", Description: "in use"})
		require.NoError(t, err)
		task, err := tasks.Create(ctx, alice.ID, CreateTaskInput{Name: "Holds it", CategoryID: category.ID})
		require.NoError(t, err)

		assert.ErrorIs(t, categories.Delete(ctx, category.ID), ErrCategoryInUse)

		require.NoError(t, tasks.Delete(ctx, alice.ID, task.ID))
		assert.NoError(t, categories.Delete(ctx, category.ID))
	})

	t.Run("missing category", func(t *testing.T) {
		assert.ErrorIs(t, categories.Delete(ctx, 9999), ErrCategoryNotFound)
	})
}
