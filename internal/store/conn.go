package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"  // Postgres driver
	_ "modernc.org/sqlite" // SQLite driver (pure Go, no CGO)
)

// Dialect selects the SQL flavor the store speaks.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// Open opens a SQLite database at path and initializes the schema. The
// database file is created if it does not exist.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := InitSchema(ctx, db, DialectSQLite); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// OpenPostgres connects to Postgres with the given DSN and initializes
// the schema.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := InitSchema(ctx, db, DialectPostgres); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
