package entities

import (
	"strings"
	"testing"
	"time"
)

func TestContestStatusNextIsForwardOnly(t *testing.T) {
	next, ok := ContestStatusOpen.Next()
	if !ok || next != ContestStatusEvaluation {
		t.Fatalf("open must advance to evaluation, got %q", next)
	}
	next, ok = ContestStatusEvaluation.Next()
	if !ok || next != ContestStatusClosed {
		t.Fatalf("evaluation must advance to closed, got %q", next)
	}
	if _, ok := ContestStatusClosed.Next(); ok {
		t.Fatalf("closed is terminal")
	}
}

func TestContestExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	if !(Contest{Status: ContestStatusOpen, EndsAt: &past}).Expired(now) {
		t.Fatalf("open contest past its end must be expired")
	}
	if (Contest{Status: ContestStatusOpen, EndsAt: &future}).Expired(now) {
		t.Fatalf("future end must not be expired")
	}
	if (Contest{Status: ContestStatusEvaluation, EndsAt: &past}).Expired(now) {
		t.Fatalf("only open contests expire")
	}
	if (Contest{Status: ContestStatusOpen}).Expired(now) {
		t.Fatalf("contest without end never expires")
	}
}

func TestValidTitle(t *testing.T) {
	if ValidTitle("   ") {
		t.Fatalf("blank title must be rejected")
	}
	if !ValidTitle(strings.Repeat("ж", MaxTitleLength)) {
		t.Fatalf("title length is counted in runes")
	}
	if ValidTitle(strings.Repeat("a", MaxTitleLength+1)) {
		t.Fatalf("overlong title must be rejected")
	}
}

func TestContestType(t *testing.T) {
	if got := (Contest{IsPublic: true, PasswordProtected: true}).Type(); got != "protected" {
		t.Fatalf("expected protected, got %s", got)
	}
	if got := (Contest{IsPublic: false}).Type(); got != "private" {
		t.Fatalf("expected private, got %s", got)
	}
}
