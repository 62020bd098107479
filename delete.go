package folio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Delete removes a photo's blob and then its record.
//
// The blob goes first. A blob that is already gone is tolerated, so retrying
// a delete that failed on the record step converges. If the blob delete
// fails the record is left untouched and ErrStoreWrite is returned. If the
// record delete fails after the blob is gone the result is a
// *PartialFailureError.
func (s *GalleryService) Delete(ctx context.Context, identity string, req DeleteRequest) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}

	if !s.caps.HasCapability(ctx, identity, ActionDelete) {
		return fmt.Errorf("delete photo: %w", ErrAuthorization)
	}

	if !req.Confirmed {
		return fmt.Errorf("delete photo: %w: %w", ErrConfirmationRequired, &ValidationError{Field: "confirm", Reason: "must be true"})
	}

	photo, err := s.repo.Get(ctx, req.ID)
	if err != nil {
		return fmt.Errorf("delete photo %s: %w", req.ID, err)
	}

	if req.ImageURL != "" && req.ImageURL != photo.ImageURL {
		return fmt.Errorf("delete photo %s: %w", req.ID, &ValidationError{Field: "image_url", Reason: "does not match the stored image"})
	}

	path, err := s.blobs.PathFromURL(photo.ImageURL)
	if err != nil {
		return fmt.Errorf("delete photo %s: %w", req.ID, err)
	}

	if err := s.blobs.Delete(ctx, path); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("delete photo %s: %w: blob delete: %w", req.ID, ErrStoreWrite, err)
		}
		slog.Warn("blob already gone", "id", req.ID, "path", path)
	}

	if err := s.repo.Delete(ctx, req.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			slog.Warn("record already gone", "id", req.ID)
			return nil
		}
		return &PartialFailureError{
			Op:        "delete photo",
			Completed: "blob delete",
			Failed:    "metadata delete",
			Path:      path,
			Err:       err,
		}
	}

	slog.Info("photo deleted", "id", req.ID, "path", path, "by", identity)
	return nil
}
