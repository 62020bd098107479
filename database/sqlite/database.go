package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/folio"

	_ "modernc.org/sqlite" // SQLite driver
)

// DB bundles a SQLite handle with the configured table names.
type DB struct {
	db     *sql.DB
	tables folio.Tables
}

// Connect opens a SQLite database. A single connection is used so that
// ":memory:" databases are shared by every query and writes are serialized.
func Connect(ctx context.Context, dsn string, tables folio.Tables) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &DB{db: db, tables: tables}, nil
}

// Ping verifies the database connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *DB) Migrate(ctx context.Context) error {
	return Migrate(ctx, d.db, d.tables)
}

// Validate checks that the database schema matches expected structure.
func (d *DB) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.tables)
}

// PhotoRepo returns the photo repo for database operations.
func (d *DB) PhotoRepo() (folio.PhotoRepo, error) {
	repo, err := NewPhotoRepo(d.db, d.tables)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// GrantRepo returns the role grant repo.
func (d *DB) GrantRepo() (folio.GrantRepo, error) {
	repo, err := NewGrantRepo(d.db, d.tables)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}
