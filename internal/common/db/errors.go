package db

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"

	commonerrors "github.com/daily-task-list/backend/internal/common/errors"
	"github.com/daily-task-list/backend/internal/observability/metrics"
)

const driverName = "postgres"

const uniqueViolation = "23505"

// IsUnavailableError reports whether err means the server could not be
// reached or dropped the connection.
func IsUnavailableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "08") {
			return true
		}
		switch pgErr.Code {
		case "57P01", "57P02", "57P03":
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func classify(err error) string {
	switch {
	case IsUnavailableError(err):
		return "unavailable"
	case IsUniqueViolation(err):
		return "unique_violation"
	default:
		return fmt.Sprintf("%T", err)
	}
}

// HandleQueryError records the query duration and maps err: no rows becomes
// notFoundErr, connectivity failures become ErrStoreUnavailable.
func HandleQueryError(err error, notFoundErr error, operation, table string, startTime time.Time) error {
	MeasureQueryDuration(operation, table, startTime)

	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFoundErr
	}
	return mapError(err, operation, table)
}

func HandleExecError(err error, operation, table string, startTime time.Time) error {
	MeasureQueryDuration(operation, table, startTime)

	if err == nil {
		return nil
	}
	return mapError(err, operation, table)
}

func MeasureQueryDuration(operation, table string, startTime time.Time) {
	metrics.StoreOperationDurationSeconds.WithLabelValues(driverName, operation, table).Observe(time.Since(startTime).Seconds())
}

func mapError(err error, operation, table string) error {
	metrics.StoreOperationErrors.WithLabelValues(driverName, operation, table, classify(err)).Inc()
	if IsUnavailableError(err) {
		return commonerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("%s: %w", operation, err))
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}
