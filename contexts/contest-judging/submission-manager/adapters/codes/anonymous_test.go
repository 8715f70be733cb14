package codes

import (
	"regexp"
	"testing"
)

func TestCodeIsStableAndFormatted(t *testing.T) {
	coder := UUIDv5Coder{}
	first := coder.Code(4, 17)
	if first != coder.Code(4, 17) {
		t.Fatalf("code must be stable")
	}
	if !regexp.MustCompile(`^TXT-[0-9A-F]{8}$`).MatchString(first) {
		t.Fatalf("unexpected code format %q", first)
	}
	if first == coder.Code(17, 4) || first == coder.Code(4, 18) {
		t.Fatalf("codes must differ across contests and submissions")
	}
}
