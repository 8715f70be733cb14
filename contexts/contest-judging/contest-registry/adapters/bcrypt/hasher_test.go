package bcryptadapter

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasherRoundTrip(t *testing.T) {
	h := Hasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("quill-and-ink")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "quill-and-ink" {
		t.Fatalf("password must not be stored in clear")
	}
	if !h.Compare(hash, "quill-and-ink") {
		t.Fatalf("expected matching password to compare")
	}
	if h.Compare(hash, "wrong") {
		t.Fatalf("expected mismatched password to fail")
	}
	if h.Compare("", "quill-and-ink") {
		t.Fatalf("empty hash never matches")
	}
}
