package commonerrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	commonerrors "github.com/daily-task-list/backend/internal/common/errors"
)

func TestDomainError_WithCauseKeepsIdentity(t *testing.T) {
	cause := errors.New("connection refused")
	err := commonerrors.ErrStoreUnavailable.WithCause(cause)

	if !errors.Is(err, commonerrors.ErrStoreUnavailable) {
		t.Error("expected errors.Is to match the sentinel after WithCause")
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to match the cause")
	}
	if errors.Is(err, commonerrors.ErrCircuitOpen) {
		t.Error("did not expect a match against an unrelated sentinel")
	}
	if err.Message() != "service temporarily unavailable" {
		t.Errorf("unexpected message %q", err.Message())
	}
}

func TestDomainError_NestedWithCause(t *testing.T) {
	err := commonerrors.ErrTaskNotFound.WithCause(errors.New("a")).WithCause(errors.New("b"))
	if !errors.Is(err, commonerrors.ErrTaskNotFound) {
		t.Error("expected nested WithCause to keep the original sentinel")
	}
}

func TestAsDomainError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("list tasks: %w", commonerrors.ErrStoreUnavailable)

	de, ok := commonerrors.AsDomainError(wrapped)
	if !ok {
		t.Fatal("expected a domain error")
	}
	if de.HTTPStatus() != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", de.HTTPStatus())
	}
	if de.Code() != "STORE_UNAVAILABLE" {
		t.Errorf("expected STORE_UNAVAILABLE, got %s", de.Code())
	}
}

func TestIsUnavailable(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{"store unavailable", commonerrors.ErrStoreUnavailable, true},
		{"circuit open", commonerrors.ErrCircuitOpen, true},
		{"wrapped", fmt.Errorf("x: %w", commonerrors.ErrStoreUnavailable.WithCause(errors.New("dial"))), true},
		{"not found", commonerrors.ErrTaskNotFound, false},
		{"plain", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := commonerrors.IsUnavailable(tc.err); got != tc.want {
				t.Errorf("IsUnavailable() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStatusMapping(t *testing.T) {
	testCases := []struct {
		err    commonerrors.DomainError
		status int
	}{
		{commonerrors.ErrInvalidJSON, http.StatusBadRequest},
		{commonerrors.ErrMissingCredentials, http.StatusBadRequest},
		{commonerrors.ErrUsernameAlreadyExists, http.StatusConflict},
		{commonerrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{commonerrors.ErrTaskNotFound, http.StatusNotFound},
		{commonerrors.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{commonerrors.ErrInternalError, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Code(), func(t *testing.T) {
			if tc.err.HTTPStatus() != tc.status {
				t.Errorf("expected %d, got %d", tc.status, tc.err.HTTPStatus())
			}
		})
	}
}
