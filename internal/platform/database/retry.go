// File: internal/platform/database/retry.go
package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"carmatch_backend/internal/config"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ErrStoreUnavailable wraps the last transient error once retries are exhausted.
var ErrStoreUnavailable = errors.New("persistence store unavailable")

const (
	DefaultRetryAttempts = 3
	DefaultRetryBackoff  = 200 * time.Millisecond
)

// Operation is a unit of persistence work that may be attempted more than once.
// It must be safe to repeat: conditional writes, idempotent inserts, reads.
// A write can commit and still fail with a transient error when the reply is
// lost, so a repeated conditional write may match zero rows for work it
// already did. Operations that report rows affected re-check their own
// effect before writing again.
type Operation func(ctx context.Context) error

// Retrier re-runs an Operation on transient store failures with a fixed backoff.
type Retrier struct {
	attempts    int
	backoff     time.Duration
	isTransient func(error) bool
	logger      *zap.Logger
}

// NewRetrier builds a Retrier from DB_RETRY_ATTEMPTS and DB_RETRY_BACKOFF_MS.
func NewRetrier(cfg *config.Config, logger *zap.Logger) *Retrier {
	return NewRetrierWith(cfg.DBRetryAttempts, cfg.DBRetryBackoff, logger)
}

func NewRetrierWith(attempts int, backoff time.Duration, logger *zap.Logger) *Retrier {
	if attempts < 1 {
		attempts = 1
	}
	if backoff < 0 {
		backoff = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrier{attempts: attempts, backoff: backoff, isTransient: IsTransient, logger: logger}
}

// Do runs op up to the configured number of attempts. Non-transient errors
// are returned immediately and unchanged.
func (r *Retrier) Do(ctx context.Context, op Operation) error {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		if !r.isTransient(err) {
			return err
		}
		if attempt == r.attempts {
			break
		}
		r.logger.Warn("Transient database error, retrying",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", r.attempts),
			zap.Error(err))

		timer := time.NewTimer(r.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// IsTransient reports whether err is a connection-level or serialization
// failure that is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08": // connection exception
			return true
		case pgErr.Code == "40001", pgErr.Code == "40P01": // serialization failure, deadlock
			return true
		case pgErr.Code == "57P01": // admin shutdown
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
