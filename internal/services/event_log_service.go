package services

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/taskr/taskr-api/internal/models"
	"github.com/taskr/taskr-api/internal/repository"
	"gorm.io/gorm"
)

const defaultEventBatchSize = 100

// EventLogService reads the audit trail of tasks
type EventLogService struct {
	taskRepo  repository.TaskRepository
	eventRepo repository.EventLogRepository
	batchSize int
}

// NewEventLogService creates a new EventLogService
func NewEventLogService(taskRepo repository.TaskRepository, eventRepo repository.EventLogRepository) *EventLogService {
	return &EventLogService{
		taskRepo:  taskRepo,
		eventRepo: eventRepo,
		batchSize: defaultEventBatchSize,
	}
}

// ListForTask returns the entries of a task oldest first. The sequence reads
// in batches as it is consumed and starts over from the first entry on every
// range. A missing task is ErrTaskNotFound, never an empty sequence.
func (s *EventLogService) ListForTask(ctx context.Context, taskID uint64) (iter.Seq2[models.TaskEventLog, error], error) {
	if _, err := s.taskRepo.FindByID(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	batch := s.batchSize
	return func(yield func(models.TaskEventLog, error) bool) {
		for offset := 0; ; offset += batch {
			entries, err := s.eventRepo.ListForTask(ctx, taskID, offset, batch)
			if err != nil {
				yield(models.TaskEventLog{}, fmt.Errorf("failed to list events: %w", err))
				return
			}

			for _, entry := range entries {
				if !yield(entry, nil) {
					return
				}
			}

			if len(entries) < batch {
				return
			}
		}
	}, nil
}

// CollectEvents drains seq into a slice, stopping at the first error.
func CollectEvents(seq iter.Seq2[models.TaskEventLog, error]) ([]models.TaskEventLog, error) {
	entries := []models.TaskEventLog{}
	for entry, err := range seq {
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
