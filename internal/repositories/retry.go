package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "mahfaza/internal/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// Bounded retries for concurrency conflicts; business errors never retry.
	defaultRetryAttempts = 3
	retryBaseDelay       = 25 * time.Millisecond
)

// Postgres error codes that indicate the transaction lost a concurrency
// conflict and can be safely re-run from the top.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
)

// IsRetryable reports whether err is a transient conflict worth re-running
// the whole unit of work for.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// withRetry re-runs fn on transient conflicts with exponential backoff.
// Exhaustion surfaces ErrConflict so callers can distinguish "retry may
// succeed" from a business rejection.
func withRetry(ctx context.Context, attempts int, fn func() error) error {
	var err error
	delay := retryBaseDelay
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !IsRetryable(err) {
			return err
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
	return fmt.Errorf("%w: %v", domain.ErrConflict, err)
}
