package db

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type migration struct {
	Version  string
	Title    string
	SQL      string
	Checksum string
}

type appliedMigration struct {
	Version   string    `gorm:"column:version;primaryKey"`
	Title     string    `gorm:"column:title"`
	Checksum  string    `gorm:"column:checksum"`
	AppliedAt time.Time `gorm:"column:applied_at"`
}

func (appliedMigration) TableName() string { return "schema_migrations" }

// Migrate applies every embedded migration that is not recorded in
// schema_migrations. Applied files whose checksum changed abort the run.
func Migrate(ctx context.Context, gormDB *gorm.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	conn := gormDB.WithContext(ctx)
	if err := conn.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    VARCHAR(255) PRIMARY KEY,
		title      VARCHAR(500),
		checksum   VARCHAR(64),
		applied_at TIMESTAMPTZ DEFAULT NOW()
	)`).Error; err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	var applied []appliedMigration
	if err := conn.Find(&applied).Error; err != nil {
		return fmt.Errorf("list applied migrations: %w", err)
	}
	checksums := make(map[string]string, len(applied))
	for _, item := range applied {
		checksums[item.Version] = item.Checksum
	}

	for _, m := range migrations {
		if existing, ok := checksums[m.Version]; ok {
			if existing != "" && existing != m.Checksum {
				return fmt.Errorf("migration %s was modified after it was applied", m.Version)
			}
			continue
		}
		err := conn.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(m.SQL).Error; err != nil {
				return err
			}
			return tx.Create(&appliedMigration{
				Version:   m.Version,
				Title:     m.Title,
				Checksum:  m.Checksum,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Version, err)
		}
		logger.Info("migration applied",
			"event", "db_migration_applied",
			"module", "internal/platform/db",
			"layer", "platform",
			"version", m.Version,
			"title", m.Title,
		)
	}
	return nil
}

func loadMigrations() ([]migration, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}
	items := make([]migration, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		version, rest, ok := strings.Cut(strings.TrimSuffix(name, ".sql"), "_")
		if !ok {
			continue
		}
		content, err := migrationFiles.ReadFile("migrations/" + name)
		if err != nil {
			return nil, err
		}
		sum := sha256.Sum256(content)
		items = append(items, migration{
			Version:  version,
			Title:    strings.ReplaceAll(rest, "_", " "),
			SQL:      string(content),
			Checksum: hex.EncodeToString(sum[:]),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Version < items[j].Version })
	return items, nil
}
