package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/daily-task-list/backend/internal/common/constants"
	commonerrors "github.com/daily-task-list/backend/internal/common/errors"
	"github.com/daily-task-list/backend/internal/common/logger"
	"github.com/daily-task-list/backend/internal/observability/metrics"
	"github.com/daily-task-list/backend/internal/task/domain"
	taskrepo "github.com/daily-task-list/backend/internal/task/repository"
)

type Breaker interface {
	Call(ctx context.Context, fn func(context.Context) error) error
}

// CreateInput carries an optional Priority (nil means default) and an
// optional DueDate (nil is stored as null).
type CreateInput struct {
	Title    string
	UserID   string
	Priority *string
	DueDate  *string
}

type TaskService struct {
	repo    taskrepo.Repository
	breaker Breaker
	log     *logger.Logger
}

func NewTaskService(repo taskrepo.Repository, breaker Breaker, log *logger.Logger) *TaskService {
	return &TaskService{
		repo:    repo,
		breaker: breaker,
		log:     log,
	}
}

func (s *TaskService) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	if userID == "" {
		s.log.WithFields(ctx, logger.Fields{
			"action": "list_tasks_validation_failed",
		}).Warn("list tasks failed: missing user id")
		return nil, commonerrors.ErrMissingUserID
	}

	var tasks []domain.Task
	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		var listErr error
		tasks, listErr = s.repo.ListByUserID(ctx, userID)
		return listErr
	})
	if err != nil {
		return nil, s.storeFailure(ctx, "list_tasks_failed", logger.Fields{"user_id": userID}, err)
	}

	if tasks == nil {
		tasks = []domain.Task{}
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"count":   len(tasks),
		"action":  "list_tasks",
	}).Debug("tasks listed")

	return tasks, nil
}

func (s *TaskService) CreateTask(ctx context.Context, input CreateInput) (domain.Task, error) {
	if input.Title == "" || input.UserID == "" {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": input.UserID,
			"action":  "create_task_validation_failed",
		}).Warn("create task failed: missing title or user id")
		return domain.Task{}, commonerrors.ErrMissingTaskFields
	}

	priority := constants.DefaultTaskPriority
	if input.Priority != nil {
		priority = *input.Priority
	}

	task := domain.Task{
		Title:     input.Title,
		Completed: false,
		UserID:    input.UserID,
		Priority:  priority,
		DueDate:   input.DueDate,
	}

	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		created, createErr := s.repo.Create(ctx, task)
		if createErr == nil {
			task = created
		}
		return createErr
	})
	if err != nil {
		return domain.Task{}, s.storeFailure(ctx, "create_task_failed", logger.Fields{"user_id": input.UserID}, err)
	}

	metrics.TasksCreatedTotal.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": task.UserID,
		"task_id": string(task.ID),
		"action":  "task_created",
	}).Info("task created")

	return task, nil
}

// SetCompletion sets the completed flag and nothing else. Setting the
// current value again succeeds.
func (s *TaskService) SetCompletion(ctx context.Context, id domain.ID, completed *bool) error {
	if completed == nil {
		s.log.WithFields(ctx, logger.Fields{
			"task_id": string(id),
			"action":  "set_completion_validation_failed",
		}).Warn("set completion failed: missing completed")
		return commonerrors.ErrMissingCompleted
	}

	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		return s.repo.SetCompleted(ctx, id, *completed)
	})
	if err != nil {
		if isMissingTask(err) {
			s.log.WithFields(ctx, logger.Fields{
				"task_id": string(id),
				"action":  "set_completion_not_found",
			}).Warn("set completion failed: task not found")
			return commonerrors.ErrTaskNotFound
		}
		return s.storeFailure(ctx, "set_completion_failed", logger.Fields{"task_id": string(id)}, err)
	}

	metrics.TaskCompletionUpdatesTotal.WithLabelValues(strconv.FormatBool(*completed)).Inc()
	s.log.WithFields(ctx, logger.Fields{
		"task_id":   string(id),
		"completed": *completed,
		"action":    "task_completion_set",
	}).Info("task completion updated")

	return nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id domain.ID) error {
	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		if isMissingTask(err) {
			s.log.WithFields(ctx, logger.Fields{
				"task_id": string(id),
				"action":  "delete_task_not_found",
			}).Warn("delete task failed: task not found")
			return commonerrors.ErrTaskNotFound
		}
		return s.storeFailure(ctx, "delete_task_failed", logger.Fields{"task_id": string(id)}, err)
	}

	metrics.TasksDeletedTotal.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"task_id": string(id),
		"action":  "task_deleted",
	}).Info("task deleted")

	return nil
}

func isMissingTask(err error) bool {
	return errors.Is(err, taskrepo.ErrTaskNotFound) || errors.Is(err, taskrepo.ErrInvalidTaskID)
}

func (s *TaskService) storeFailure(ctx context.Context, action string, fields logger.Fields, err error) error {
	fields["action"] = action
	s.log.WithFields(ctx, fields).Errorf("store operation failed: %v", err)
	return fmt.Errorf("%s: %w", action, err)
}
