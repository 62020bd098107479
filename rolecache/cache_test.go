package rolecache_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/rolecache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type SpyRoleRepo struct {
	mock.Mock
}

func (s *SpyRoleRepo) HasRole(ctx context.Context, identity, role string) (bool, error) {
	args := s.Called(ctx, identity, role)
	return args.Bool(0), args.Error(1)
}

var (
	redisURL  string
	redisOnce sync.Once
)

// getSharedRedis starts one Redis container for the package.
func getSharedRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	redisOnce.Do(func() {
		ctx := context.Background()

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections"),
			},
			Started: true,
		})
		if err != nil {
			t.Fatalf("failed to start redis container: %v", err)
		}

		host, err := container.Host(ctx)
		if err != nil {
			t.Fatalf("redis host: %v", err)
		}
		port, err := container.MappedPort(ctx, "6379/tcp")
		if err != nil {
			t.Fatalf("redis port: %v", err)
		}
		redisURL = fmt.Sprintf("redis://%s:%s/0", host, port.Port())
	})

	return redisURL
}

func setupCache(t *testing.T, repo folio.RoleRepo) *rolecache.Cache {
	t.Helper()

	client, err := rolecache.Dial(context.Background(), getSharedRedis(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	// Unique prefix keeps parallel tests apart on one server.
	return rolecache.New(client, repo, rolecache.Config{
		TTL:    time.Minute,
		Prefix: "test:" + uuid.NewString(),
	})
}

func TestCache_HitsRepoOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := new(SpyRoleRepo)
	repo.On("HasRole", mock.Anything, "owner@example.com", folio.RoleAdmin).Return(true, nil).Once()
	repo.On("HasRole", mock.Anything, "visitor@example.com", folio.RoleAdmin).Return(false, nil).Once()

	cache := setupCache(t, repo)

	for range 3 {
		ok, err := cache.HasRole(ctx, "owner@example.com", folio.RoleAdmin)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = cache.HasRole(ctx, "visitor@example.com", folio.RoleAdmin)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	repo.AssertExpectations(t)
}

func TestCache_Invalidate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := new(SpyRoleRepo)
	repo.On("HasRole", mock.Anything, "owner@example.com", folio.RoleAdmin).Return(false, nil).Once()
	repo.On("HasRole", mock.Anything, "owner@example.com", folio.RoleAdmin).Return(true, nil).Once()

	cache := setupCache(t, repo)

	ok, err := cache.HasRole(ctx, "owner@example.com", folio.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Invalidate(ctx, "owner@example.com", folio.RoleAdmin))

	ok, err = cache.HasRole(ctx, "owner@example.com", folio.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, ok)

	repo.AssertExpectations(t)
}

func TestCache_RepoErrorNotCached(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := new(SpyRoleRepo)
	repo.On("HasRole", mock.Anything, "owner@example.com", folio.RoleAdmin).Return(false, errors.New("db down")).Once()
	repo.On("HasRole", mock.Anything, "owner@example.com", folio.RoleAdmin).Return(true, nil).Once()

	cache := setupCache(t, repo)

	_, err := cache.HasRole(ctx, "owner@example.com", folio.RoleAdmin)
	require.Error(t, err)

	ok, err := cache.HasRole(ctx, "owner@example.com", folio.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, ok)

	repo.AssertExpectations(t)
}

func TestCache_RedisDownFallsThrough(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	repo := new(SpyRoleRepo)
	repo.On("HasRole", mock.Anything, "owner@example.com", folio.RoleAdmin).Return(true, nil).Twice()

	cache := rolecache.New(client, repo, rolecache.Config{})

	for range 2 {
		ok, err := cache.HasRole(ctx, "owner@example.com", folio.RoleAdmin)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	assert.Error(t, cache.Invalidate(ctx, "owner@example.com", folio.RoleAdmin))
	repo.AssertExpectations(t)
}

func TestDial_BadURL(t *testing.T) {
	t.Parallel()

	_, err := rolecache.Dial(context.Background(), "not a url")
	assert.ErrorContains(t, err, "parse redis url")
}
