package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/folio"
)

// Migrate creates the photo and role grant tables if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables folio.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if err := createPhotosTable(ctx, pool, tables.Photos); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Photos, err)
	}

	if err := createRoleGrantsTable(ctx, pool, tables.RoleGrants); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.RoleGrants, err)
	}

	return nil
}

// DropTables removes both tables. Used by tests and local resets.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables folio.Tables) error {
	for _, name := range []string{tables.RoleGrants, tables.Photos} {
		sql := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", pgx.Identifier{name}.Sanitize())
		if _, err := pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("migrate down %s: %w", name, err)
		}
	}
	return nil
}

func createPhotosTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	indexGallery := pgx.Identifier{fmt.Sprintf("idx_%s_gallery", tableName)}.Sanitize()
	indexCategory := pgx.Identifier{fmt.Sprintf("idx_%s_category", tableName)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			caption TEXT NOT NULL DEFAULT '',
			story TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL CHECK (category IN ('cinematography', 'wildlife')),
			image_url TEXT NOT NULL UNIQUE,
			tags TEXT[] NOT NULL DEFAULT '{}',
			is_featured BOOLEAN NOT NULL DEFAULT FALSE,
			display_order INTEGER NOT NULL DEFAULT 0,
			owner TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (is_featured DESC, display_order ASC, created_at DESC);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (category);
	`,
		quotedTable,
		indexGallery, quotedTable,
		indexCategory, quotedTable,
	)

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create photos table: %w", err)
	}
	return nil
}

func createRoleGrantsTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			identity TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (identity, role)
		)
	`, pgx.Identifier{tableName}.Sanitize())

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create role grants table: %w", err)
	}
	return nil
}
