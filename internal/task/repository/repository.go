package repository

import (
	"context"
	"errors"

	"github.com/daily-task-list/backend/internal/task/domain"
)

type Repository interface {
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	ListByUserID(ctx context.Context, userID string) ([]domain.Task, error)
	SetCompleted(ctx context.Context, id domain.ID, completed bool) error
	Delete(ctx context.Context, id domain.ID) error
}

var ErrTaskNotFound = errors.New("task not found")

// ErrInvalidTaskID is returned for ids the active store can never have
// assigned.
var ErrInvalidTaskID = errors.New("invalid task id")
