package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	commonerrors "github.com/daily-task-list/backend/internal/common/errors"
	"github.com/daily-task-list/backend/internal/observability/metrics"
)

const driverName = "mongo"

// IsUnavailableError reports whether err means the server could not be
// selected or the connection failed mid-operation.
func IsUnavailableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}

func classify(err error) string {
	switch {
	case IsUnavailableError(err):
		return "unavailable"
	case mongo.IsDuplicateKeyError(err):
		return "duplicate_key"
	default:
		return fmt.Sprintf("%T", err)
	}
}

func MeasureOperation(operation, collection string, startTime time.Time) {
	metrics.StoreOperationDurationSeconds.WithLabelValues(driverName, operation, collection).Observe(time.Since(startTime).Seconds())
}

// MapError counts err and converts connectivity failures to
// ErrStoreUnavailable. Other errors are wrapped with the operation name.
func MapError(err error, operation, collection string) error {
	if err == nil {
		return nil
	}
	metrics.StoreOperationErrors.WithLabelValues(driverName, operation, collection, classify(err)).Inc()
	if IsUnavailableError(err) {
		return commonerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("%s: %w", operation, err))
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}
