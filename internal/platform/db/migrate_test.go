package db

import "testing"

func TestLoadMigrationsOrderedWithChecksums(t *testing.T) {
	items, err := loadMigrations()
	if err != nil {
		t.Fatalf("load migrations: %v", err)
	}
	if len(items) == 0 {
		t.Fatalf("expected embedded migrations")
	}
	for i, item := range items {
		if len(item.Checksum) != 64 {
			t.Fatalf("migration %s checksum length %d", item.Version, len(item.Checksum))
		}
		if i > 0 && items[i-1].Version >= item.Version {
			t.Fatalf("migrations not ordered: %s before %s", items[i-1].Version, item.Version)
		}
	}
	if items[0].Version != "0001" || items[0].Title != "contest judging" {
		t.Fatalf("unexpected first migration: %+v", items[0])
	}
	if len(items) < 2 || items[1].Version != "0002" || items[1].Title != "contest vote sets" {
		t.Fatalf("expected the vote set migration second, got %+v", items)
	}
}
