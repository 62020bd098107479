package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sagarc03/folio"
)

type GrantRepo struct {
	db        *sql.DB
	tableName string
}

func NewGrantRepo(db *sql.DB, tables folio.Tables) (*GrantRepo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new grant repo: %w", err)
	}

	return &GrantRepo{db: db, tableName: quoteIdentifier(tables.RoleGrants)}, nil
}

func (r *GrantRepo) HasRole(ctx context.Context, identity, role string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE identity = ? AND role = ?)`, r.tableName) //nolint:gosec // table name is validated

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, identity, role).Scan(&ok); err != nil {
		return false, fmt.Errorf("has role: %w", err)
	}
	return ok, nil
}

func (r *GrantRepo) Grant(ctx context.Context, identity, role string) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (identity, role, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (identity, role) DO NOTHING`, r.tableName)

	if _, err := r.db.ExecContext(ctx, query, identity, role, time.Now().UTC().Format(timeFormat)); err != nil {
		return fmt.Errorf("grant: %w", err)
	}
	return nil
}

func (r *GrantRepo) Revoke(ctx context.Context, identity, role string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE identity = ? AND role = ?`, r.tableName) //nolint:gosec // table name is validated

	result, err := r.db.ExecContext(ctx, query, identity, role)
	if err != nil {
		return fmt.Errorf("revoke: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("revoke: %w", folio.ErrNotFound)
	}
	return nil
}

func (r *GrantRepo) ListGrants(ctx context.Context) ([]folio.RoleGrant, error) {
	query := fmt.Sprintf(`SELECT identity, role, created_at FROM %s ORDER BY identity, role`, r.tableName) //nolint:gosec // table name is validated

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	grants := []folio.RoleGrant{}
	for rows.Next() {
		var g folio.RoleGrant
		var createdAt string
		if err := rows.Scan(&g.Identity, &g.Role, &createdAt); err != nil {
			return nil, fmt.Errorf("list grants: scan: %w", err)
		}
		g.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("list grants: parse created_at: %w", err)
		}
		grants = append(grants, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list grants: rows error: %w", err)
	}

	return grants, nil
}
