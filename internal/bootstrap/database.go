package bootstrap

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/shopmesh/storefront/config"
)

// InitDatabase creates a Bun database connection for the configured provider.
func InitDatabase(opts config.DatabaseConfig, logLevel string) (*bun.DB, error) {
	if opts.Provider == "" {
		return nil, fmt.Errorf("database provider must be specified")
	}

	databaseURL := opts.URL
	if databaseURL == "" {
		return nil, fmt.Errorf("database connection string must be specified")
	}

	var (
		sqlDB *sql.DB
		err   error
	)

	switch opts.Provider {
	case "sqlite":
		if !filepath.IsAbs(databaseURL) && databaseURL != ":memory:" {
			cwd, _ := os.Getwd()
			databaseURL = filepath.Join(cwd, databaseURL)
		}

		if databaseURL != ":memory:" {
			dbDir := filepath.Dir(databaseURL)
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}

		sqlDB, err = sql.Open("sqlite3", databaseURL)
		if err != nil {
			return nil, err
		}

		db := bun.NewDB(sqlDB, sqlitedialect.New())
		configurePool(sqlDB, opts)
		enableDebugging(db, logLevel)
		return db, nil

	case "postgres":
		sqlDB, err = sql.Open("postgres", databaseURL)
		if err != nil {
			return nil, err
		}

		db := bun.NewDB(sqlDB, pgdialect.New())
		configurePool(sqlDB, opts)
		enableDebugging(db, logLevel)
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database provider: %s", opts.Provider)
	}
}

func configurePool(sqlDB *sql.DB, opts config.DatabaseConfig) {
	numCPU := runtime.NumCPU()

	maxOpenConns := opts.MaxOpenConns
	if maxOpenConns <= 0 {
		maxOpenConns = numCPU * 4
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)

	maxIdleConns := opts.MaxIdleConns
	if maxIdleConns <= 0 {
		maxIdleConns = numCPU * 2
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)

	connMaxLifetime := opts.ConnMaxLifetime
	if connMaxLifetime == 0 {
		connMaxLifetime = 10 * time.Minute
	}
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
}

func enableDebugging(db *bun.DB, logLevel string) {
	if logLevel == "debug" {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
		))
	}
}
