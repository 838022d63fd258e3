package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrConnectExhausted is returned when every startup connection attempt failed
var ErrConnectExhausted = errors.New("database connection attempts exhausted")

// Default retry settings for the startup connection
const (
	DefaultConnectAttempts  = 5
	DefaultConnectBaseDelay = 500 * time.Millisecond
)

// RetryPolicy controls how the startup connection is retried
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Sleep waits between attempts. Nil uses a timer that honours ctx.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Delay returns the wait that follows the given failed attempt (1-based):
// BaseDelay * 2^(attempt-1).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.BaseDelay * time.Duration(int64(1)<<(attempt-1))
}

// Retry runs op until it succeeds or MaxAttempts is reached. There is no wait
// after the final attempt. Exhaustion wraps ErrConnectExhausted and the last error.
func Retry(ctx context.Context, policy RetryPolicy, logger *zap.Logger, op func(ctx context.Context, attempt int) error) error {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = DefaultConnectAttempts
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = DefaultConnectBaseDelay
	}
	sleep := policy.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		lastErr = op(ctx, attempt)
		if lastErr == nil {
			return nil
		}

		if attempt == policy.MaxAttempts {
			logger.Error("Database connect attempt failed, giving up",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", policy.MaxAttempts),
				zap.Error(lastErr),
			)
			break
		}

		delay := policy.Delay(attempt)
		logger.Warn("Database connect attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", policy.MaxAttempts),
			zap.Duration("retry_in", delay),
			zap.Error(lastErr),
		)
		if err := sleep(ctx, delay); err != nil {
			return fmt.Errorf("database connect retry cancelled: %w", err)
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrConnectExhausted, policy.MaxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
