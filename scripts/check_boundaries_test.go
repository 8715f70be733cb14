package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeGoFile(t *testing.T, root string, rel string, imports ...string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	body := "package x\n\nimport (\n"
	for _, imp := range imports {
		body += "\t_ \"" + imp + "\"\n"
	}
	body += ")\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestCollectViolations(t *testing.T) {
	root := t.TempDir()
	const base = "inkwell/contexts/contest-judging/"

	writeGoFile(t, root, "contest-judging/voting-engine/domain/entities/vote.go",
		"strings", base+"voting-engine/domain/errors")
	writeGoFile(t, root, "contest-judging/voting-engine/application/commands/cast.go",
		"context", base+"voting-engine/ports", "inkwell/contracts/events/v1")
	writeGoFile(t, root, "contest-judging/voting-engine/module.go",
		base+"voting-engine/adapters/memory", "inkwell/internal/platform/messaging")
	writeGoFile(t, root, "contest-judging/voting-engine/domain/entities/bad.go",
		"inkwell/internal/platform/db")
	writeGoFile(t, root, "contest-judging/voting-engine/application/queries/bad.go",
		base+"voting-engine/adapters/postgres", "github.com/redis/go-redis/v9")
	writeGoFile(t, root, "contest-judging/voting-engine/ports/bad.go",
		base+"judge-registry/ports", base+"voting-engine/application")

	got, err := collectViolations(root, "inkwell")
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	want := []violation{
		{File: "contexts/contest-judging/voting-engine/application/queries/bad.go", Line: 4, Import: base + "voting-engine/adapters/postgres", Rule: "application must not import adapters"},
		{File: "contexts/contest-judging/voting-engine/application/queries/bad.go", Line: 5, Import: "github.com/redis/go-redis/v9", Rule: "application import is outside its allowlist"},
		{File: "contexts/contest-judging/voting-engine/domain/entities/bad.go", Line: 4, Import: "inkwell/internal/platform/db", Rule: "domain must not import runtime infrastructure"},
		{File: "contexts/contest-judging/voting-engine/ports/bad.go", Line: 4, Import: base + "judge-registry/ports", Rule: "components must not import each other"},
		{File: "contexts/contest-judging/voting-engine/ports/bad.go", Line: 5, Import: base + "voting-engine/application", Rule: "ports import is outside its allowlist"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d violations, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("violation %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestReadModulePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "go.mod")
	if err := os.WriteFile(path, []byte("module inkwell\n\ngo 1.24\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := readModulePath(path)
	if err != nil || got != "inkwell" {
		t.Fatalf("expected inkwell, got %q err=%v", got, err)
	}
	if _, err := readModulePath(filepath.Join(dir, "missing.mod")); err == nil {
		t.Fatalf("expected error for missing go.mod")
	}
}
