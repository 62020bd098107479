package postgres_test

import (
	"context"
	"testing"

	"github.com/sagarc03/folio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantRepo(t *testing.T) {
	repo := setupGrantRepo(t)
	ctx := context.Background()

	ok, err := repo.HasRole(ctx, "owner@example.com", folio.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Grant(ctx, "owner@example.com", folio.RoleAdmin))
	require.NoError(t, repo.Grant(ctx, "owner@example.com", folio.RoleAdmin), "grant is idempotent")
	require.NoError(t, repo.Grant(ctx, "editor@example.com", "editor"))

	ok, err = repo.HasRole(ctx, "owner@example.com", folio.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasRole(ctx, "editor@example.com", folio.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok)

	grants, err := repo.ListGrants(ctx)
	require.NoError(t, err)
	require.Len(t, grants, 2)
	assert.Equal(t, "editor@example.com", grants[0].Identity)
	assert.Equal(t, "owner@example.com", grants[1].Identity)
	assert.False(t, grants[1].CreatedAt.IsZero())

	require.NoError(t, repo.Revoke(ctx, "owner@example.com", folio.RoleAdmin))
	assert.ErrorIs(t, repo.Revoke(ctx, "owner@example.com", folio.RoleAdmin), folio.ErrNotFound)

	ok, err = repo.HasRole(ctx, "owner@example.com", folio.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok)
}
