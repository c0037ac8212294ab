package service_test

import (
	"context"

	"github.com/daily-task-list/backend/internal/task/domain"
)

type mockTaskRepo struct {
	createFunc       func(ctx context.Context, task domain.Task) (domain.Task, error)
	listByUserIDFunc func(ctx context.Context, userID string) ([]domain.Task, error)
	setCompletedFunc func(ctx context.Context, id domain.ID, completed bool) error
	deleteFunc       func(ctx context.Context, id domain.ID) error
}

func (m *mockTaskRepo) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, task)
	}
	task.ID = "task-1"
	return task, nil
}

func (m *mockTaskRepo) ListByUserID(ctx context.Context, userID string) ([]domain.Task, error) {
	if m.listByUserIDFunc != nil {
		return m.listByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockTaskRepo) SetCompleted(ctx context.Context, id domain.ID, completed bool) error {
	if m.setCompletedFunc != nil {
		return m.setCompletedFunc(ctx, id, completed)
	}
	return nil
}

func (m *mockTaskRepo) Delete(ctx context.Context, id domain.ID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type passthroughBreaker struct{}

func (passthroughBreaker) Call(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
