package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"

	defaultMaxAttempts = 3
)

// ErrContestRowMissing signals that the contest row to lock does not exist.
// Callers translate it into their own not-found error.
var ErrContestRowMissing = errors.New("contest row not found")

type heldContestKey struct {
	contestID int64
}

// ContestLocker serializes mutations of one contest by holding
// SELECT ... FOR UPDATE on its row for the whole unit of work.
type ContestLocker struct {
	db          *gorm.DB
	maxAttempts int
	logger      *slog.Logger
}

func NewContestLocker(db *gorm.DB, maxAttempts int, logger *slog.Logger) *ContestLocker {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContestLocker{db: db, maxAttempts: maxAttempts, logger: logger}
}

// WithContestLock runs fn while holding the contest row lock. Nested calls for
// the same contest on the same context reuse the held lock. A missing contest
// row is not an error here: fn runs unlocked and reports its own not-found.
func (l *ContestLocker) WithContestLock(ctx context.Context, contestID int64, fn func(context.Context) error) error {
	if held, _ := ctx.Value(heldContestKey{contestID: contestID}).(bool); held {
		return fn(ctx)
	}
	if tx, ok := TxFromContext(ctx); ok {
		if err := lockContestRow(tx.WithContext(ctx), contestID); err != nil && !errors.Is(err, ErrContestRowMissing) {
			return err
		}
		return fn(context.WithValue(ctx, heldContestKey{contestID: contestID}, true))
	}

	var lastErr error
	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := lockContestRow(tx, contestID); err != nil && !errors.Is(err, ErrContestRowMissing) {
				return err
			}
			lockedCtx := context.WithValue(WithTx(ctx, tx), heldContestKey{contestID: contestID}, true)
			return fn(lockedCtx)
		})
		if err == nil || !IsRetryable(err) {
			return err
		}
		lastErr = err
		l.logger.Warn("contest transaction retry",
			"event", "contest_lock_retry",
			"module", "internal/platform/db",
			"layer", "platform",
			"contest_id", contestID,
			"attempt", attempt,
			"error", err.Error(),
		)
		if attempt < l.maxAttempts {
			if err := sleepBackoff(ctx, attempt); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("%w: %v", ErrTransactionConflict, lastErr)
}

func lockContestRow(tx *gorm.DB, contestID int64) error {
	var ids []int64
	if err := tx.Table("contests").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", contestID).
		Pluck("id", &ids).
		Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return ErrContestRowMissing
	}
	return nil
}

// IsRetryable reports serialization failures and deadlocks.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
}

// IsUniqueViolation reports SQLSTATE 23505.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505"
}

func sleepBackoff(ctx context.Context, attempt int) error {
	base := time.Duration(attempt*20) * time.Millisecond
	jitter := time.Duration(rand.Int64N(int64(10 * time.Millisecond)))
	timer := time.NewTimer(base + jitter)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
