package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/folio"
)

type GrantRepo struct {
	pool      *pgxpool.Pool
	tableName string
}

func NewGrantRepo(pool *pgxpool.Pool, tables folio.Tables) (*GrantRepo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new grant repo: %w", err)
	}

	return &GrantRepo{pool: pool, tableName: pgx.Identifier{tables.RoleGrants}.Sanitize()}, nil
}

func (r *GrantRepo) HasRole(ctx context.Context, identity, role string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE identity = $1 AND role = $2)`, r.tableName)

	var ok bool
	if err := r.pool.QueryRow(ctx, query, identity, role).Scan(&ok); err != nil {
		return false, fmt.Errorf("has role: %w", err)
	}
	return ok, nil
}

func (r *GrantRepo) Grant(ctx context.Context, identity, role string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (identity, role)
		VALUES ($1, $2)
		ON CONFLICT (identity, role) DO NOTHING
	`, r.tableName)

	if _, err := r.pool.Exec(ctx, query, identity, role); err != nil {
		return fmt.Errorf("grant: %w", err)
	}
	return nil
}

func (r *GrantRepo) Revoke(ctx context.Context, identity, role string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE identity = $1 AND role = $2`, r.tableName)

	result, err := r.pool.Exec(ctx, query, identity, role)
	if err != nil {
		return fmt.Errorf("revoke: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("revoke: %w", folio.ErrNotFound)
	}
	return nil
}

func (r *GrantRepo) ListGrants(ctx context.Context) ([]folio.RoleGrant, error) {
	query := fmt.Sprintf(`SELECT identity, role, created_at FROM %s ORDER BY identity, role`, r.tableName)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}

	grants, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (folio.RoleGrant, error) {
		var g folio.RoleGrant
		err := row.Scan(&g.Identity, &g.Role, &g.CreatedAt)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}

	return grants, nil
}
