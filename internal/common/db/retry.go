package db

import (
	"context"
	"fmt"
	"time"

	"github.com/daily-task-list/backend/internal/common/logger"
)

// RetryConfig bounds RetryWithBackoff. Retryable defaults to
// IsUnavailableError; any other error is returned at once.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Retryable    func(error) bool
}

func (c RetryConfig) nextDelay(delay time.Duration) time.Duration {
	next := time.Duration(float64(delay) * c.Multiplier)
	if c.MaxDelay > 0 && next > c.MaxDelay {
		return c.MaxDelay
	}
	return next
}

// RetryWithBackoff runs operation up to MaxAttempts times, sleeping with
// exponential backoff between retryable failures. It gives up early when ctx
// is done.
func RetryWithBackoff(ctx context.Context, log *logger.Logger, config RetryConfig, operation func() error) error {
	retryable := config.Retryable
	if retryable == nil {
		retryable = IsUnavailableError
	}
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := config.InitialDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				log.Infof("store reachable after %d attempts", attempt)
			}
			return nil
		}
		if !retryable(lastErr) || attempt == attempts {
			break
		}

		log.Warnf("store unreachable (attempt %d/%d), retrying in %v: %v", attempt, attempts, delay, lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-timer.C:
		}
		delay = config.nextDelay(delay)
	}

	if !retryable(lastErr) {
		return lastErr
	}
	return fmt.Errorf("store unreachable after %d attempts: %w", attempts, lastErr)
}
