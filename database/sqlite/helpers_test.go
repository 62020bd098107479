package sqlite_test

import (
	"context"
	"testing"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/database/sqlite"
	"github.com/stretchr/testify/require"
)

var testTables = folio.Tables{Photos: "photos", RoleGrants: "role_grants"}

// setupTestDB opens a migrated in-memory database closed on cleanup.
func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Connect(ctx, ":memory:", testTables)
	require.NoError(t, err, "failed to connect")
	require.NoError(t, db.Migrate(ctx), "failed to migrate")

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func setupPhotoRepo(t *testing.T) folio.PhotoRepo {
	t.Helper()
	repo, err := setupTestDB(t).PhotoRepo()
	require.NoError(t, err)
	return repo
}

func setupGrantRepo(t *testing.T) folio.GrantRepo {
	t.Helper()
	repo, err := setupTestDB(t).GrantRepo()
	require.NoError(t, err)
	return repo
}

func titlesOf(photos []folio.Photo) []string {
	out := make([]string, len(photos))
	for i, p := range photos {
		out[i] = p.Title
	}
	return out
}
