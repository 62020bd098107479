// Package sqlite implements the photo and role grant repos using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/folio"
)

// timeFormat is fixed width so text ordering matches time ordering.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

const photoColumns = `id, title, description, caption, story, category, image_url, tags, is_featured, display_order, owner, created_at`

type PhotoRepo struct {
	db        *sql.DB
	tableName string
	now       func() time.Time
}

func NewPhotoRepo(db *sql.DB, tables folio.Tables) (*PhotoRepo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new photo repo: %w", err)
	}

	return &PhotoRepo{db: db, tableName: quoteIdentifier(tables.Photos), now: time.Now}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row scanner) (folio.Photo, error) {
	var p folio.Photo
	var idStr, category, tags, createdAt string

	err := row.Scan(
		&idStr, &p.Title, &p.Description, &p.Caption, &p.Story, &category,
		&p.ImageURL, &tags, &p.IsFeatured, &p.DisplayOrder, &p.Owner, &createdAt,
	)
	if err != nil {
		return folio.Photo{}, err
	}

	p.ID, err = uuid.Parse(idStr)
	if err != nil {
		return folio.Photo{}, fmt.Errorf("parse uuid: %w", err)
	}

	p.Category = folio.Category(category)

	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return folio.Photo{}, fmt.Errorf("parse tags: %w", err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}

	p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return folio.Photo{}, fmt.Errorf("parse created_at: %w", err)
	}

	return p, nil
}

// Insert stores a photo. A nil DisplayOrder is resolved in the same statement
// to one past the current maximum.
func (r *PhotoRepo) Insert(ctx context.Context, np folio.NewPhoto) (folio.Photo, error) {
	tags := np.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return folio.Photo{}, fmt.Errorf("insert: encode tags: %w", err)
	}

	id := uuid.New()
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %[1]s (id, title, description, caption, story, category, image_url, tags, is_featured, display_order, owner, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?,
			COALESCE(?, (SELECT COALESCE(MAX(display_order) + 1, 0) FROM %[1]s)),
			?, ?)`, r.tableName)

	_, err = r.db.ExecContext(ctx, query,
		id.String(), np.Title, np.Description, np.Caption, np.Story, string(np.Category),
		np.ImageURL, string(tagsJSON), np.IsFeatured, np.DisplayOrder, np.Owner,
		r.now().UTC().Format(timeFormat),
	)
	if err != nil {
		return folio.Photo{}, fmt.Errorf("insert: %w", err)
	}

	p, err := r.Get(ctx, id)
	if err != nil {
		return folio.Photo{}, fmt.Errorf("insert: read back: %w", err)
	}
	return p, nil
}

func (r *PhotoRepo) Get(ctx context.Context, id uuid.UUID) (folio.Photo, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, photoColumns, r.tableName) //nolint:gosec // table name is validated

	p, err := scanPhoto(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return folio.Photo{}, folio.ErrNotFound
		}
		return folio.Photo{}, fmt.Errorf("get: %w", err)
	}

	return p, nil
}

func (r *PhotoRepo) List(ctx context.Context, q folio.ListQuery) ([]folio.Photo, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s
		FROM %s
		WHERE (? = '' OR category = ?)
		ORDER BY is_featured DESC, display_order ASC, created_at DESC`, photoColumns, r.tableName)

	rows, err := r.db.QueryContext(ctx, query, string(q.Category), string(q.Category))
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

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
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s
		SET is_featured = COALESCE(?, is_featured),
			display_order = COALESCE(?, display_order)
		WHERE id = ?`, r.tableName)

	result, err := r.db.ExecContext(ctx, query, u.IsFeatured, u.DisplayOrder, id.String())
	if err != nil {
		return folio.Photo{}, fmt.Errorf("update: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return folio.Photo{}, fmt.Errorf("update: rows affected: %w", err)
	}
	if affected == 0 {
		return folio.Photo{}, folio.ErrNotFound
	}

	return r.Get(ctx, id)
}

func (r *PhotoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, r.tableName) //nolint:gosec // table name is validated

	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete: %w", folio.ErrNotFound)
	}

	return nil
}
