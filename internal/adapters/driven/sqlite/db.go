// Package sqlite implements driven.Store over an embedded, cgo-free
// modernc.org/sqlite database, per spec.md §6. It is the single embedded
// relational store holding the match and doc tables; the writer (package
// internal/writer) is the only caller of the mutating Txn methods.
package sqlite

import (
	"context"
	_ "embed"
	"fmt"

	"database/sql"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// DB wraps a *sql.DB connection to an embedded SQLite file.
type DB struct {
	*sql.DB
}

// Config holds connection configuration.
type Config struct {
	// Path is the filesystem path of the SQLite database file. Use
	// ":memory:" for a throwaway in-process store (tests only: an
	// in-memory database lives only as long as the pool's single
	// connection, so production callers always pass a file path).
	Path string
}

// Connect opens the database, applies pragmas favoring the writer's
// single-connection append-or-grow workload, and initializes the schema.
func Connect(ctx context.Context, cfg Config) (*DB, error) {
	dsn := cfg.Path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// The append-or-grow protocol requires a single writer; SQLite itself
	// only allows one writer transaction in flight at a time, so cap the
	// pool to avoid SQLITE_BUSY storms under concurrent readers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	wrapped := &DB{DB: db}
	if err := wrapped.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return wrapped, nil
}

func (db *DB) initSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
