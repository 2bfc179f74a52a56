package db

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

const driverName = "sqlite"

// SQLiteConnect opens the SQLite database at dbPath. ":memory:" gives a
// private in-memory database.
//
// The pool is capped at a single connection: SQLite allows one writer, and
// an in-memory database exists only on the connection that created it.
func SQLiteConnect(dbPath string) (*sqlx.DB, error) {
	pool, err := sqlx.Open(driverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database connection: %w", err)
	}
	pool.SetMaxOpenConns(1)

	if err := pool.Ping(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	slog.Info("Connected to sqlite database", "path", dbPath)
	return pool, nil
}

// InitializeDB creates the sessions table if it doesn't exist.
func InitializeDB(ctx context.Context, DB *sqlx.DB) error {
	sessionSchema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expires_at ON sessions (expires_at);`

	if _, err := DB.ExecContext(ctx, sessionSchema); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}

	slog.InfoContext(ctx, "DB connection initialized and schema verified.")

	return nil
}
