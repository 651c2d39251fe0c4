package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lib/pq"
)

// maintenanceDatabase is the PostgreSQL database used to create the store database
const maintenanceDatabase = "postgres"

// EnsureDatabase creates the store database when it does not exist yet
func EnsureDatabase(ctx context.Context, cfg StoreConfig) error {
	switch cfg.Dialect {
	case DialectPostgres:
		db, err := sql.Open("postgres", postgresDSN(cfg, maintenanceDatabase))
		if err != nil {
			return fmt.Errorf("failed to open maintenance connection: %w", err)
		}
		defer db.Close()
		return ensurePostgresDatabase(ctx, db, cfg.Database)
	case DialectMySQL:
		db, err := sql.Open("mysql", mysqlDSN(cfg, ""))
		if err != nil {
			return fmt.Errorf("failed to open maintenance connection: %w", err)
		}
		defer db.Close()
		return ensureMySQLDatabase(ctx, db, cfg.Database)
	case DialectSQLite:
		if dir := filepath.Dir(cfg.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create store directory: %w", err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported store dialect %q", cfg.Dialect)
	}
}

func ensurePostgresDatabase(ctx context.Context, db *sql.DB, name string) error {
	var one int
	err := db.QueryRowContext(ctx, "SELECT 1 FROM pg_database WHERE datname = $1", name).Scan(&one)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to look up database %q: %w", name, err)
	}

	if _, err := db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return fmt.Errorf("failed to create database %q: %w", name, err)
	}
	return nil
}

func ensureMySQLDatabase(ctx context.Context, db *sql.DB, name string) error {
	quoted := "`" + strings.ReplaceAll(name, "`", "``") + "`"
	if _, err := db.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS "+quoted+" CHARACTER SET utf8mb4"); err != nil {
		return fmt.Errorf("failed to create database %q: %w", name, err)
	}
	return nil
}
