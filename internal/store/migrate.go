package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

func (db *DB) migrationProvider() (*goose.Provider, error) {
	dir := "migrations/postgres"
	dialect := goose.DialectPostgres
	if db.dialect == SQLite {
		dir = "migrations/sqlite"
		dialect = goose.DialectSQLite3
	}

	fsys, err := fs.Sub(migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db.DB, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// Migrate applies every pending schema migration
func Migrate(ctx context.Context, db *DB) error {
	provider, err := db.migrationProvider()
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		log.Info("applied migration", "version", r.Source.Version, "path", r.Source.Path, "duration", r.Duration)
	}
	return nil
}

// MigrationStatus describes one known migration
type MigrationStatus struct {
	Version int64
	Path    string
	Applied bool
}

// Migrations lists every embedded migration and whether it has been applied
func Migrations(ctx context.Context, db *DB) ([]MigrationStatus, error) {
	provider, err := db.migrationProvider()
	if err != nil {
		return nil, err
	}

	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration status: %w", err)
	}

	out := make([]MigrationStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, MigrationStatus{
			Version: s.Source.Version,
			Path:    s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}
