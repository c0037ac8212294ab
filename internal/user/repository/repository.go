package repository

import (
	"context"
	"errors"

	"github.com/daily-task-list/backend/internal/user/domain"
)

// Repository stores user accounts. Create assigns the id and returns the
// stored record.
type Repository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
}

var ErrUserNotFound = errors.New("user not found")

var ErrUsernameAlreadyExists = errors.New("username already exists")
