package repository

import (
	"database/sql/driver"
	goerrors "errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"

	apperrors "banking-service/internal/errors"
)

const (
	retryInitialInterval = 50 * time.Millisecond
	retryMaxInterval     = 500 * time.Millisecond
	retryMaxAttempts     = 3
)

// withRetry re-runs fn with exponential backoff while it fails transiently.
// Business errors and other permanent failures are returned on the first
// occurrence. fn must be safe to invoke more than once.
func withRetry(logger *slog.Logger, op string, fn func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = retryInitialInterval
	policy.MaxInterval = retryMaxInterval

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return backoff.Permanent(err)
		}
		logger.Warn("Retrying database operation",
			"operation", op,
			"attempt", attempt,
			"error", err)
		return err
	}, backoff.WithMaxRetries(policy, retryMaxAttempts))
}

// isTransient reports whether err is a failure that a retry can plausibly
// clear: a lost connection, a serialization conflict or a deadlock. Anything
// carrying a business error code is never retried.
func isTransient(err error) bool {
	var appErr *apperrors.AppError
	if goerrors.As(err, &appErr) && appErr.IsBusiness() {
		return false
	}
	if goerrors.Is(err, driver.ErrBadConn) {
		return true
	}
	var pqErr *pq.Error
	if !goerrors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code.Class() == "08" {
		return true
	}
	switch pqErr.Code {
	case "40001", "40P01", "57P01", "57P02", "57P03":
		return true
	}
	return false
}
