package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/folio"
)

// DB bundles a connection pool with the configured table names.
type DB struct {
	pool   *pgxpool.Pool
	tables folio.Tables
}

// Connect establishes a connection to PostgreSQL.
// Tables should be validated before calling Connect.
func Connect(ctx context.Context, dsn string, tables folio.Tables) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &DB{pool: pool, tables: tables}, nil
}

// Ping verifies the database connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *DB) Migrate(ctx context.Context) error {
	return Migrate(ctx, d.pool, d.tables)
}

// Validate checks that the database schema matches expected structure.
func (d *DB) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.pool, d.tables)
}

// PhotoRepo returns the photo repo for database operations.
func (d *DB) PhotoRepo() (folio.PhotoRepo, error) {
	repo, err := NewPhotoRepo(d.pool, d.tables)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// GrantRepo returns the role grant repo.
func (d *DB) GrantRepo() (folio.GrantRepo, error) {
	repo, err := NewGrantRepo(d.pool, d.tables)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// Close closes the database connection pool.
func (d *DB) Close() error {
	d.pool.Close()
	return nil
}
