package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/iho/securebank-ledger/internal/domain"
)

// PostgreSQL error codes for retryable errors.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"
)

// RetryConfig bounds the retry loop.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Retrier implements usecase.Retrier with exponential backoff. Retryable
// errors that outlast MaxAttempts surface as domain.ErrConflict.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	logger          zerolog.Logger
}

// NewRetrier creates a new PostgreSQL retrier.
func NewRetrier(cfg RetryConfig, logger zerolog.Logger) *Retrier {
	r := &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     1 * time.Second,
		maxElapsedTime:  10 * time.Second,
		logger:          logger,
	}
	if cfg.MaxAttempts > 0 {
		r.maxRetries = cfg.MaxAttempts - 1
	}
	if cfg.InitialInterval > 0 {
		r.initialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		r.maxInterval = cfg.MaxInterval
	}
	return r
}

// Retry executes an operation with exponential backoff on retryable errors.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	retryCount := 0

	err := backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		if !isRetryableError(err) {
			return backoff.Permanent(err)
		}

		retryCount++
		if retryCount > r.maxRetries {
			return backoff.Permanent(err)
		}

		r.logger.Warn().
			Err(err).
			Int("retry", retryCount).
			Msg("retryable database error, retrying")

		return err
	}, backoff.WithContext(b, ctx))

	if err != nil && isRetryableError(err) {
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}

	return err
}

// isRetryableError checks if a PostgreSQL error should trigger a retry.
func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable:
			return true
		}
	}
	return false
}
