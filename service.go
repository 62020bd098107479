package folio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxUploadBytes is the payload limit applied when ServiceConfig leaves it unset.
const DefaultMaxUploadBytes int64 = 10 << 20

// PhotoRepo defines the interface for photo record persistence.
// Implementations must be safe for concurrent use; the backing store is the
// only arbiter of consistency between concurrent writers.
//
// All methods accept a context for cancellation and timeout control.
type PhotoRepo interface {
	// Insert stores a new photo record and returns it with its store-assigned
	// ID and created_at. When p.DisplayOrder is nil the record is placed after
	// every existing record (max(display_order) + 1).
	Insert(ctx context.Context, p NewPhoto) (Photo, error)

	// Get retrieves a photo by ID.
	//
	// Returns:
	//   - error: ErrNotFound if the ID doesn't exist, or other database errors
	Get(ctx context.Context, id uuid.UUID) (Photo, error)

	// List returns photos ordered by is_featured desc, display_order asc,
	// created_at desc. An empty q.Category selects every category.
	List(ctx context.Context, q ListQuery) ([]Photo, error)

	// Update applies the non-nil fields of u.
	//
	// Returns:
	//   - error: ErrNotFound if the ID doesn't exist, or other database errors
	Update(ctx context.Context, id uuid.UUID, u PhotoUpdate) (Photo, error)

	// Delete removes a photo record.
	//
	// Returns:
	//   - error: ErrNotFound if the ID doesn't exist, or other database errors
	Delete(ctx context.Context, id uuid.UUID) error
}

// BlobStore defines the interface for raw image storage.
// Implementations can use the local filesystem or any S3-compatible service.
type BlobStore interface {
	// Put stores content at path. It must not overwrite: if an object already
	// exists at path it returns ErrAlreadyExists and leaves it untouched.
	// A failed or cancelled Put must not leave a partial object behind.
	// size is the expected byte count, or -1 when it is not known up front.
	Put(ctx context.Context, path, contentType string, size int64, content io.Reader) (SaveResult, error)

	// Get opens the object at path for reading. The caller closes it.
	//
	// Returns:
	//   - error: ErrNotFound if nothing is stored at path
	Get(ctx context.Context, path string) (io.ReadSeekCloser, error)

	// Delete removes the object at path.
	//
	// Returns:
	//   - error: ErrNotFound if nothing is stored at path
	Delete(ctx context.Context, path string) error

	// List returns every stored object. Used by reconciliation only.
	List(ctx context.Context) ([]BlobEntry, error)

	// PublicURL returns the publicly dereferenceable URL for path.
	PublicURL(path string) string

	// PathFromURL inverts PublicURL.
	PathFromURL(url string) (string, error)
}

type GalleryService struct {
	repo           PhotoRepo
	blobs          BlobStore
	caps           Capabilities
	compensator    *Compensator
	maxUploadBytes int64
	now            func() time.Time
}

// ServiceConfig holds configuration options for GalleryService.
type ServiceConfig struct {
	MaxUploadBytes int64         // Payload limit (default: 10 MiB)
	CleanupTimeout time.Duration // Timeout for compensating blob deletes (default: 30s)
	Now            func() time.Time
}

func NewGalleryService(repo PhotoRepo, blobs BlobStore, caps Capabilities, cfg ServiceConfig) (*GalleryService, error) {
	if repo == nil || blobs == nil || caps == nil {
		return nil, errors.New("new gallery service: repo, blob store and capabilities are required")
	}

	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	cleanupTimeout := cfg.CleanupTimeout
	if cleanupTimeout <= 0 {
		cleanupTimeout = 30 * time.Second
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &GalleryService{
		repo:           repo,
		blobs:          blobs,
		caps:           caps,
		compensator:    NewCompensator(blobs, cleanupTimeout),
		maxUploadBytes: maxUpload,
		now:            now,
	}, nil
}

// Get returns a single photo for the detail view.
func (s *GalleryService) Get(ctx context.Context, id uuid.UUID) (Photo, error) {
	if err := ctx.Err(); err != nil {
		return Photo{}, fmt.Errorf("get photo: %w", err)
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Photo{}, fmt.Errorf("get photo %s: %w", id, err)
	}
	return p, nil
}

// List returns the ordered photo list, optionally filtered by category.
func (s *GalleryService) List(ctx context.Context, q ListQuery) ([]Photo, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}

	if q.Category != "" && !q.Category.IsValid() {
		return nil, fmt.Errorf("list photos: %w", &ValidationError{Field: "category", Reason: "must be one of: cinematography, wildlife"})
	}

	photos, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}

	SortPhotos(photos)
	return photos, nil
}

// Gallery returns the composed hero + tile view of the current photo set.
// It never writes to either store.
func (s *GalleryService) Gallery(ctx context.Context, q ListQuery) (Gallery, error) {
	photos, err := s.List(ctx, q)
	if err != nil {
		return Gallery{}, fmt.Errorf("compose gallery: %w", err)
	}
	return Compose(photos), nil
}

// Update applies an admin-only feature toggle and/or display order change.
func (s *GalleryService) Update(ctx context.Context, identity string, id uuid.UUID, u PhotoUpdate) (Photo, error) {
	if err := ctx.Err(); err != nil {
		return Photo{}, fmt.Errorf("update photo: %w", err)
	}

	if u.IsFeatured == nil && u.DisplayOrder == nil {
		return Photo{}, fmt.Errorf("update photo: %w", &ValidationError{Field: "update", Reason: "nothing to change"})
	}

	if u.IsFeatured != nil && !s.caps.HasCapability(ctx, identity, ActionFeature) {
		return Photo{}, fmt.Errorf("update photo: %w", ErrAuthorization)
	}

	if u.DisplayOrder != nil {
		if !s.caps.HasCapability(ctx, identity, ActionReorder) {
			return Photo{}, fmt.Errorf("update photo: %w", ErrAuthorization)
		}
		if *u.DisplayOrder < 0 {
			return Photo{}, fmt.Errorf("update photo: %w", &ValidationError{Field: "display_order", Reason: "must not be negative"})
		}
	}

	p, err := s.repo.Update(ctx, id, u)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Photo{}, fmt.Errorf("update photo %s: %w", id, err)
		}
		return Photo{}, fmt.Errorf("update photo %s: %w: %w", id, ErrStoreWrite, err)
	}
	return p, nil
}
