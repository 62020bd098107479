package folio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Upload validates a draft and payload, writes the blob, then registers the
// photo record. The two writes form a saga: if the record insert fails the
// blob write is compensated by Compensator.UndoBlobWrite.
//
// Validation happens before any store call:
//  1. caller must hold the upload capability (ErrAuthorization)
//  2. payload.Size must not exceed the configured limit (ErrSizeLimit)
//  3. draft fields (*ValidationError naming the first failing field)
//  4. payload must sniff as an image (*ValidationError on "image")
//
// Errors after validation:
//   - ErrAlreadyExists: the derived blob path is taken; nothing was written
//   - ErrStoreWrite: the blob write or the record insert failed; nothing is left behind
//   - *PartialFailureError: the insert failed and the compensating delete failed too;
//     Path names the orphaned blob
//
// A blob written before the caller's context is cancelled, whose insert never
// started, is not rolled back. Reconciliation reports such orphans.
func (s *GalleryService) Upload(ctx context.Context, identity string, draft Draft, payload Payload) (Photo, error) {
	if err := ctx.Err(); err != nil {
		return Photo{}, fmt.Errorf("upload photo: %w", err)
	}

	if !s.caps.HasCapability(ctx, identity, ActionUpload) {
		return Photo{}, fmt.Errorf("upload photo: %w", ErrAuthorization)
	}

	if payload.Size > s.maxUploadBytes {
		return Photo{}, fmt.Errorf("upload photo: %w: %d bytes exceeds limit of %d", ErrSizeLimit, payload.Size, s.maxUploadBytes)
	}

	d, err := ValidateDraft(draft)
	if err != nil {
		return Photo{}, fmt.Errorf("upload photo: %w", err)
	}

	if payload.Content == nil {
		return Photo{}, fmt.Errorf("upload photo: %w", &ValidationError{Field: "image", Reason: "is required"})
	}

	content, contentType, err := sniffImage(payload.Content)
	if err != nil {
		return Photo{}, fmt.Errorf("upload photo: %w", err)
	}

	path, err := BlobPath(identity, s.now(), payload.Filename)
	if err != nil {
		return Photo{}, fmt.Errorf("upload photo: %w", err)
	}

	limit, size := s.maxUploadBytes, int64(-1)
	if payload.Size > 0 {
		limit, size = payload.Size, payload.Size
	}

	if _, err := s.blobs.Put(ctx, path, contentType, size, &sizeGuard{r: content, remaining: limit}); err != nil {
		if errors.Is(err, ErrAlreadyExists) || errors.Is(err, ErrSizeLimit) {
			return Photo{}, fmt.Errorf("upload photo %s: %w", path, err)
		}
		return Photo{}, fmt.Errorf("upload photo %s: %w: blob write: %w", path, ErrStoreWrite, err)
	}

	np := NewPhoto{
		Title:       d.Title,
		Description: d.Description,
		Caption:     d.Caption,
		Story:       d.Story,
		Category:    Category(d.Category),
		ImageURL:    s.blobs.PublicURL(path),
		Tags:        ParseTags(d.Tags),
		IsFeatured:  d.IsFeatured,
		Owner:       identity,
	}
	if d.IsFeatured {
		first := 0
		np.DisplayOrder = &first
	}

	photo, err := s.repo.Insert(ctx, np)
	if err != nil {
		if undoErr := s.compensator.UndoBlobWrite(path); undoErr != nil {
			return Photo{}, &PartialFailureError{
				Op:        "upload photo",
				Completed: "blob write",
				Failed:    "metadata insert",
				Path:      path,
				Err:       errors.Join(err, undoErr),
			}
		}
		return Photo{}, fmt.Errorf("upload photo %s: %w: metadata insert: %w", path, ErrStoreWrite, err)
	}

	slog.Info("photo uploaded", "id", photo.ID, "path", path, "owner", identity, "category", photo.Category)
	return photo, nil
}

// Compensator undoes the blob half of an upload whose record insert failed.
type Compensator struct {
	blobs   BlobStore
	timeout time.Duration
}

func NewCompensator(blobs BlobStore, timeout time.Duration) *Compensator {
	return &Compensator{blobs: blobs, timeout: timeout}
}

// UndoBlobWrite deletes the blob at path. It runs on its own background
// context so a cancelled request still cleans up. A blob that is already gone
// counts as undone.
func (c *Compensator) UndoBlobWrite(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	err := c.blobs.Delete(ctx, path)
	if err != nil && !errors.Is(err, ErrNotFound) {
		slog.Error("compensating blob delete failed", "path", path, "err", err)
		return fmt.Errorf("undo blob write %s: %w", path, err)
	}

	slog.Warn("compensated blob write", "path", path)
	return nil
}
