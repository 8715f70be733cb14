package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsRetryableRecognisesSerializationAndDeadlock(t *testing.T) {
	for _, code := range []string{"40001", "40P01"} {
		err := fmt.Errorf("commit: %w", &pgconn.PgError{Code: code})
		if !IsRetryable(err) {
			t.Fatalf("expected %s to be retryable", code)
		}
	}
	if IsRetryable(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("unique violation must not be retryable")
	}
	if IsRetryable(errors.New("boom")) {
		t.Fatalf("plain errors must not be retryable")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})) {
		t.Fatalf("expected unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation is not a unique violation")
	}
}
