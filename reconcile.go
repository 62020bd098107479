package folio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// ReconcileReport describes where the blob store and the photo records disagree.
type ReconcileReport struct {
	Records int
	Blobs   int
	// MissingBlobs are records whose image is not in the blob store.
	MissingBlobs []Photo
	// Orphans are stored blobs that no record references.
	Orphans []BlobEntry
	// Foreign are records whose image URL does not belong to the blob store.
	Foreign []Photo
}

func (r ReconcileReport) Clean() bool {
	return len(r.MissingBlobs) == 0 && len(r.Orphans) == 0 && len(r.Foreign) == 0
}

// Reconcile compares every record against every stored blob. It changes nothing.
func (s *GalleryService) Reconcile(ctx context.Context) (ReconcileReport, error) {
	photos, err := s.repo.List(ctx, ListQuery{})
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("reconcile: list photos: %w", err)
	}

	entries, err := s.blobs.List(ctx)
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("reconcile: list blobs: %w", err)
	}

	stored := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		stored[e.Path] = struct{}{}
	}

	report := ReconcileReport{Records: len(photos), Blobs: len(entries)}
	referenced := make(map[string]struct{}, len(photos))

	for _, p := range photos {
		path, err := s.blobs.PathFromURL(p.ImageURL)
		if err != nil {
			report.Foreign = append(report.Foreign, p)
			continue
		}
		referenced[path] = struct{}{}
		if _, ok := stored[path]; !ok {
			report.MissingBlobs = append(report.MissingBlobs, p)
		}
	}

	for _, e := range entries {
		if _, ok := referenced[e.Path]; !ok {
			report.Orphans = append(report.Orphans, e)
		}
	}
	slices.SortFunc(report.Orphans, func(a, b BlobEntry) int {
		return strings.Compare(a.Path, b.Path)
	})

	return report, nil
}

// PruneOrphans deletes the orphan blobs named in report and returns how many
// went. A blob that is already gone counts as pruned. Records are never touched.
func (s *GalleryService) PruneOrphans(ctx context.Context, report ReconcileReport) (int, error) {
	pruned := 0
	var errs []error

	for _, e := range report.Orphans {
		if err := ctx.Err(); err != nil {
			return pruned, fmt.Errorf("prune orphans: %w", err)
		}

		err := s.blobs.Delete(ctx, e.Path)
		if err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, fmt.Errorf("%s: %w", e.Path, err))
			continue
		}
		pruned++
		slog.Info("orphan blob pruned", "path", e.Path, "size", e.Size)
	}

	if len(errs) > 0 {
		return pruned, fmt.Errorf("prune orphans: %w", errors.Join(errs...))
	}
	return pruned, nil
}
