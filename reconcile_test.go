package folio_test

import (
	"context"
	"strings"
	"testing"

	"github.com/sagarc03/folio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_Clean(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s, _, _ := newMemService(t)
	_, err := s.Upload(ctx, admin, validDraft(), validPayload())
	require.NoError(t, err)

	report, err := s.Reconcile(ctx)
	require.NoError(t, err)

	assert.True(t, report.Clean())
	assert.Equal(t, 1, report.Records)
	assert.Equal(t, 1, report.Blobs)
}

func TestReconcile_FindsDrift(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s, repo, blobs := newMemService(t)

	kept, err := s.Upload(ctx, admin, validDraft(), validPayload())
	require.NoError(t, err)

	lost, err := s.Upload(ctx, admin, validDraft(), validPayload())
	require.NoError(t, err)
	lostPath, err := blobs.PathFromURL(lost.ImageURL)
	require.NoError(t, err)
	require.NoError(t, blobs.Delete(ctx, lostPath))

	_, err = blobs.Put(ctx, "owner/1-deadbeef.png", "image/png", -1, strings.NewReader("orphan"))
	require.NoError(t, err)

	foreign, err := repo.Insert(ctx, folio.NewPhoto{
		Title:    "Elsewhere",
		Category: folio.CategoryWildlife,
		ImageURL: "https://other.example.com/x.png",
		Owner:    admin,
	})
	require.NoError(t, err)

	report, err := s.Reconcile(ctx)
	require.NoError(t, err)

	assert.False(t, report.Clean())
	assert.Equal(t, 3, report.Records)
	assert.Equal(t, 2, report.Blobs)
	require.Len(t, report.MissingBlobs, 1)
	assert.Equal(t, lost.ID, report.MissingBlobs[0].ID)
	assert.Equal(t, []folio.BlobEntry{{Path: "owner/1-deadbeef.png", Size: 6}}, report.Orphans)
	require.Len(t, report.Foreign, 1)
	assert.Equal(t, foreign.ID, report.Foreign[0].ID)

	pruned, err := s.PruneOrphans(ctx, report)
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	_, err = blobs.Get(ctx, "owner/1-deadbeef.png")
	assert.ErrorIs(t, err, folio.ErrNotFound)

	keptPath, err := blobs.PathFromURL(kept.ImageURL)
	require.NoError(t, err)
	_, err = blobs.Get(ctx, keptPath)
	assert.NoError(t, err, "referenced blobs survive pruning")

	_, err = s.Get(ctx, lost.ID)
	assert.NoError(t, err, "pruning never touches records")
}

func TestPruneOrphans_AlreadyGone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s, _, _ := newMemService(t)

	pruned, err := s.PruneOrphans(ctx, folio.ReconcileReport{Orphans: []folio.BlobEntry{{Path: "owner/gone.png"}}})
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)
}
