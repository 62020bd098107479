// Package postgres implements the photo and role grant repos on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/folio"
)

const photoColumns = `id, title, description, caption, story, category, image_url, tags, is_featured, display_order, owner, created_at`

type PhotoRepo struct {
	pool      *pgxpool.Pool
	tableName string
}

func NewPhotoRepo(pool *pgxpool.Pool, tables folio.Tables) (*PhotoRepo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new photo repo: %w", err)
	}

	return &PhotoRepo{pool: pool, tableName: pgx.Identifier{tables.Photos}.Sanitize()}, nil
}

// Ping verifies database connectivity
func (r *PhotoRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanPhoto(row pgx.Row) (folio.Photo, error) {
	var p folio.Photo
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Caption, &p.Story, &p.Category,
		&p.ImageURL, &p.Tags, &p.IsFeatured, &p.DisplayOrder, &p.Owner, &p.CreatedAt,
	)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, err
}

// Insert stores a photo. A nil DisplayOrder is resolved in the same statement
// to one past the current maximum.
func (r *PhotoRepo) Insert(ctx context.Context, np folio.NewPhoto) (folio.Photo, error) {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (title, description, caption, story, category, image_url, tags, is_featured, display_order, owner)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
			COALESCE($9::INTEGER, (SELECT COALESCE(MAX(display_order) + 1, 0) FROM %[1]s)),
			$10)
		RETURNING %[2]s
	`, r.tableName, photoColumns)

	tags := np.Tags
	if tags == nil {
		tags = []string{}
	}

	p, err := scanPhoto(r.pool.QueryRow(ctx, query,
		np.Title, np.Description, np.Caption, np.Story, string(np.Category),
		np.ImageURL, tags, np.IsFeatured, np.DisplayOrder, np.Owner,
	))
	if err != nil {
		return folio.Photo{}, fmt.Errorf("insert: %w", err)
	}

	return p, nil
}

func (r *PhotoRepo) Get(ctx context.Context, id uuid.UUID) (folio.Photo, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, photoColumns, r.tableName)

	p, err := scanPhoto(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return folio.Photo{}, folio.ErrNotFound
		}
		return folio.Photo{}, fmt.Errorf("get: %w", err)
	}

	return p, nil
}

func (r *PhotoRepo) List(ctx context.Context, q folio.ListQuery) ([]folio.Photo, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE ($1 = '' OR category = $1)
		ORDER BY is_featured DESC, display_order ASC, created_at DESC
	`, photoColumns, r.tableName)

	rows, err := r.pool.Query(ctx, query, string(q.Category))
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	photos := []folio.Photo{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}
		photos = append(photos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows error: %w", err)
	}

	return photos, nil
}

func (r *PhotoRepo) Update(ctx context.Context, id uuid.UUID, u folio.PhotoUpdate) (folio.Photo, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_featured = COALESCE($2::BOOLEAN, is_featured),
			display_order = COALESCE($3::INTEGER, display_order)
		WHERE id = $1
		RETURNING %s
	`, r.tableName, photoColumns)

	p, err := scanPhoto(r.pool.QueryRow(ctx, query, id, u.IsFeatured, u.DisplayOrder))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return folio.Photo{}, folio.ErrNotFound
		}
		return folio.Photo{}, fmt.Errorf("update: %w", err)
	}

	return p, nil
}

func (r *PhotoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tableName)

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete: %w", folio.ErrNotFound)
	}

	return nil
}
