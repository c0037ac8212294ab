package service

import (
	"context"
	"errors"
	"fmt"

	commoncrypto "github.com/daily-task-list/backend/internal/common/crypto"
	commonerrors "github.com/daily-task-list/backend/internal/common/errors"
	"github.com/daily-task-list/backend/internal/common/logger"
	userdomain "github.com/daily-task-list/backend/internal/user/domain"
	userrepo "github.com/daily-task-list/backend/internal/user/repository"
)

// Breaker runs a store call, failing fast while the store is known to be
// down.
type Breaker interface {
	Call(ctx context.Context, fn func(context.Context) error) error
}

type Credentials struct {
	Username string
	Password string
}

type UserRecord struct {
	ID       string
	Username string
}

type IdentityService struct {
	repo    userrepo.Repository
	hasher  commoncrypto.PasswordHasher
	breaker Breaker
	log     *logger.Logger
}

func NewIdentityService(repo userrepo.Repository, hasher commoncrypto.PasswordHasher, breaker Breaker, log *logger.Logger) *IdentityService {
	return &IdentityService{
		repo:    repo,
		hasher:  hasher,
		breaker: breaker,
		log:     log,
	}
}

// Register creates an account after checking that the username is free.
// The check and the insert are separate store calls.
func (s *IdentityService) Register(ctx context.Context, input Credentials) (UserRecord, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if input.Username == "" || input.Password == "" {
		s.log.WithFields(ctx, logger.Fields{
			"action": "register_validation_failed",
		}).Warn("register failed: missing credentials")
		recordRegistration("invalid")
		return UserRecord{}, commonerrors.ErrMissingCredentials
	}

	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		_, err := s.repo.FindByUsername(ctx, input.Username)
		return err
	})
	switch {
	case err == nil:
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_username_exists",
		}).Warn("register failed: already exists")
		recordRegistration("conflict")
		return UserRecord{}, commonerrors.ErrUsernameAlreadyExists
	case !errors.Is(err, userrepo.ErrUserNotFound):
		return UserRecord{}, s.storeFailure(ctx, "register_lookup_failed", input.Username, err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		recordRegistration("error")
		return UserRecord{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var created userdomain.User
	err = s.breaker.Call(ctx, func(ctx context.Context) error {
		var createErr error
		created, createErr = s.repo.Create(ctx, userdomain.User{
			Username:     input.Username,
			PasswordHash: hash,
		})
		return createErr
	})
	if err != nil {
		if errors.Is(err, userrepo.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_username_exists",
			}).Warn("register failed: already exists")
			recordRegistration("conflict")
			return UserRecord{}, commonerrors.ErrUsernameAlreadyExists
		}
		return UserRecord{}, s.storeFailure(ctx, "register_create_failed", input.Username, err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": created.Username,
		"user_id":  string(created.ID),
		"action":   "register_success",
	}).Info("register success")
	recordRegistration("success")

	return UserRecord{ID: string(created.ID), Username: created.Username}, nil
}

// Authenticate checks a username and password pair. Unknown users and wrong
// passwords produce the same error.
func (s *IdentityService) Authenticate(ctx context.Context, input Credentials) (UserRecord, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "login_attempt",
	}).Info("login attempt")

	if input.Username == "" || input.Password == "" {
		s.log.WithFields(ctx, logger.Fields{
			"action": "login_validation_failed",
		}).Warn("login failed: missing credentials")
		recordLogin("invalid")
		return UserRecord{}, commonerrors.ErrMissingCredentials
	}

	var user userdomain.User
	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		var findErr error
		user, findErr = s.repo.FindByUsername(ctx, input.Username)
		return findErr
	})
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "login_user_not_found",
			}).Warn("login failed: not found")
			recordLogin("unauthorized")
			return UserRecord{}, commonerrors.ErrInvalidCredentials
		}
		recordLogin("error")
		return UserRecord{}, s.logStoreError(ctx, "login_fetch_failed", input.Username, err)
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		entry := s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_invalid_password",
		})
		if errors.Is(err, commoncrypto.ErrPasswordMismatch) {
			entry.Warn("login failed: invalid password")
		} else {
			entry.Errorf("login failed: stored hash unusable: %v", err)
		}
		recordLogin("unauthorized")
		return UserRecord{}, commonerrors.ErrInvalidCredentials
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "login_success",
	}).Info("login success")
	recordLogin("success")

	return UserRecord{ID: string(user.ID), Username: user.Username}, nil
}

func (s *IdentityService) storeFailure(ctx context.Context, action, username string, err error) error {
	recordRegistration("error")
	return s.logStoreError(ctx, action, username, err)
}

func (s *IdentityService) logStoreError(ctx context.Context, action, username string, err error) error {
	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"action":   action,
	}).Errorf("store operation failed: %v", err)
	return fmt.Errorf("%s: %w", action, err)
}
