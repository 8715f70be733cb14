package bootstrap

import (
	"errors"
	"fmt"
	"testing"

	contesterrors "inkwell/contexts/contest-judging/contest-registry/domain/errors"
	judgeerrors "inkwell/contexts/contest-judging/judge-registry/domain/errors"
	votingerrors "inkwell/contexts/contest-judging/voting-engine/domain/errors"
	"inkwell/internal/platform/db"
)

func TestTranslateCloseError(t *testing.T) {
	contended := fmt.Errorf("close contest 4: %w", contesterrors.ErrTransitionContended)
	if err := translateCloseError(contended); !errors.Is(err, db.ErrTransactionConflict) {
		t.Fatalf("expected a contended close to be a transaction conflict, got %v", err)
	}
	if err := translateCloseError(contesterrors.ErrContestNotFound); !errors.Is(err, votingerrors.ErrContestNotFound) {
		t.Fatalf("expected voting not found, got %v", err)
	}
	other := errors.New("boom")
	if err := translateCloseError(other); !errors.Is(err, other) {
		t.Fatalf("expected other errors unchanged, got %v", err)
	}
}

func TestTranslateContestError(t *testing.T) {
	if err := translateContestError(contesterrors.ErrContestNotFound, judgeerrors.ErrContestNotFound); !errors.Is(err, judgeerrors.ErrContestNotFound) {
		t.Fatalf("expected judge not found, got %v", err)
	}
	if err := translateContestError(nil, judgeerrors.ErrContestNotFound); err != nil {
		t.Fatalf("expected nil to stay nil, got %v", err)
	}
}
