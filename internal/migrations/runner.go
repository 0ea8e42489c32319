// Package migrations applies the embedded schema migrations with goose.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

// Run migrates the database up to the latest version.
func Run(ctx context.Context, db *bun.DB, provider string, logger *slog.Logger) error {
	subFS, err := fs.Sub(migrationsFS, "sql")
	if err != nil {
		return fmt.Errorf("failed to create sub filesystem: %w", err)
	}

	dialect, err := getDialect(provider)
	if err != nil {
		return err
	}

	gooseProvider, err := goose.NewProvider(dialect, db.DB, subFS)
	if err != nil {
		return fmt.Errorf("failed to create goose provider: %w", err)
	}

	results, err := gooseProvider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	for _, result := range results {
		logger.Info(fmt.Sprintf("Migrated: %s (%s)", result.Source.Path, result.Duration))
	}

	return nil
}

func getDialect(provider string) (goose.Dialect, error) {
	switch provider {
	case "postgres":
		return goose.DialectPostgres, nil
	case "sqlite":
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("unsupported database provider: %s", provider)
	}
}
