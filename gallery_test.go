package folio_test

import (
	"bytes"
	"context"
	"io"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/folio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo and memBlobs are in-memory stores used to check end-to-end
// properties of the pipelines without a database.
type memRepo struct {
	mu         sync.Mutex
	photos     map[uuid.UUID]folio.Photo
	seq        int
	failDelete int
}

func newMemRepo() *memRepo {
	return &memRepo{photos: map[uuid.UUID]folio.Photo{}}
}

func (r *memRepo) Insert(_ context.Context, np folio.NewPhoto) (folio.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order := 0
	if np.DisplayOrder != nil {
		order = *np.DisplayOrder
	} else {
		for _, p := range r.photos {
			order = max(order, p.DisplayOrder+1)
		}
	}
	r.seq++

	p := folio.Photo{
		ID:           uuid.New(),
		Title:        np.Title,
		Description:  np.Description,
		Caption:      np.Caption,
		Story:        np.Story,
		Category:     np.Category,
		ImageURL:     np.ImageURL,
		Tags:         np.Tags,
		IsFeatured:   np.IsFeatured,
		DisplayOrder: order,
		Owner:        np.Owner,
		CreatedAt:    time.Unix(int64(r.seq), 0),
	}
	r.photos[p.ID] = p
	return p, nil
}

func (r *memRepo) Get(_ context.Context, id uuid.UUID) (folio.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.photos[id]
	if !ok {
		return folio.Photo{}, folio.ErrNotFound
	}
	return p, nil
}

func (r *memRepo) List(_ context.Context, q folio.ListQuery) ([]folio.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []folio.Photo{}
	for _, p := range r.photos {
		if q.Category == "" || p.Category == q.Category {
			out = append(out, p)
		}
	}
	folio.SortPhotos(out)
	return out, nil
}

func (r *memRepo) Update(_ context.Context, id uuid.UUID, u folio.PhotoUpdate) (folio.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.photos[id]
	if !ok {
		return folio.Photo{}, folio.ErrNotFound
	}
	if u.IsFeatured != nil {
		p.IsFeatured = *u.IsFeatured
	}
	if u.DisplayOrder != nil {
		p.DisplayOrder = *u.DisplayOrder
	}
	r.photos[id] = p
	return p, nil
}

func (r *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDelete > 0 {
		r.failDelete--
		return io.ErrUnexpectedEOF
	}
	if _, ok := r.photos[id]; !ok {
		return folio.ErrNotFound
	}
	delete(r.photos, id)
	return nil
}

type memBlobs struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

const memBase = "https://cdn.example.com/media"

func newMemBlobs() *memBlobs {
	return &memBlobs{blobs: map[string][]byte{}}
}

func (b *memBlobs) Put(_ context.Context, path, _ string, _ int64, content io.Reader) (folio.SaveResult, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return folio.SaveResult{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.blobs[path]; ok {
		return folio.SaveResult{}, folio.ErrAlreadyExists
	}
	b.blobs[path] = data
	return folio.SaveResult{BytesWritten: int64(len(data))}, nil
}

func (b *memBlobs) Get(_ context.Context, path string) (io.ReadSeekCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.blobs[path]
	if !ok {
		return nil, folio.ErrNotFound
	}
	return nopCloser{bytes.NewReader(data)}, nil
}

func (b *memBlobs) Delete(_ context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.blobs[path]; !ok {
		return folio.ErrNotFound
	}
	delete(b.blobs, path)
	return nil
}

func (b *memBlobs) List(_ context.Context) ([]folio.BlobEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []folio.BlobEntry{}
	for p, data := range b.blobs {
		out = append(out, folio.BlobEntry{Path: p, Size: int64(len(data))})
	}
	return out, nil
}

func (b *memBlobs) PublicURL(path string) string {
	return folio.PublicURL(memBase, path)
}

func (b *memBlobs) PathFromURL(url string) (string, error) {
	return folio.PathFromURL(memBase, url)
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }

type staticRoles map[string]bool

func (s staticRoles) HasRole(_ context.Context, identity, role string) (bool, error) {
	return role == folio.RoleAdmin && s[identity], nil
}

func newMemService(t *testing.T) (*folio.GalleryService, *memRepo, *memBlobs) {
	t.Helper()
	repo := newMemRepo()
	blobs := newMemBlobs()
	gate := folio.NewGate(staticRoles{admin: true})
	s, err := folio.NewGalleryService(repo, blobs, gate, folio.ServiceConfig{})
	require.NoError(t, err)
	return s, repo, blobs
}

func TestUploadThenRead(t *testing.T) {
	service, repo, blobs := newMemService(t)
	ctx := context.Background()

	content := pngBytes(4096)
	photo, err := service.Upload(ctx, admin, validDraft(), folio.Payload{
		Filename: "heron.png",
		Size:     int64(len(content)),
		Content:  bytes.NewReader(content),
	})
	require.NoError(t, err)

	assert.Len(t, repo.photos, 1)
	assert.Len(t, blobs.blobs, 1)
	assert.Equal(t, []string{"nature", "wildlife", "portrait"}, photo.Tags)
	assert.Equal(t, admin, photo.Owner)

	path, err := blobs.PathFromURL(photo.ImageURL)
	require.NoError(t, err)
	rc, err := blobs.Get(ctx, path)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestUploadStreamBeyondDeclaredSize(t *testing.T) {
	service, repo, blobs := newMemService(t)

	content := pngBytes(4096)
	_, err := service.Upload(context.Background(), admin, validDraft(), folio.Payload{
		Filename: "heron.png",
		Size:     100,
		Content:  bytes.NewReader(content),
	})
	assert.ErrorIs(t, err, folio.ErrSizeLimit)
	assert.Empty(t, repo.photos)
	assert.Empty(t, blobs.blobs)
}

func TestUploadDisplayOrderAppends(t *testing.T) {
	service, repo, _ := newMemService(t)
	ctx := context.Background()

	for range 3 {
		content := pngBytes(64)
		_, err := service.Upload(ctx, admin, validDraft(), folio.Payload{Filename: "a.png", Size: int64(len(content)), Content: bytes.NewReader(content)})
		require.NoError(t, err)
	}

	photos, err := repo.List(ctx, folio.ListQuery{})
	require.NoError(t, err)
	orders := []int{}
	for _, p := range photos {
		orders = append(orders, p.DisplayOrder)
	}
	assert.Equal(t, []int{0, 1, 2}, orders)
}

func TestDeleteRemovesBoth(t *testing.T) {
	service, repo, blobs := newMemService(t)
	ctx := context.Background()

	content := pngBytes(64)
	photo, err := service.Upload(ctx, admin, validDraft(), folio.Payload{Filename: "a.png", Size: int64(len(content)), Content: bytes.NewReader(content)})
	require.NoError(t, err)
	path, err := blobs.PathFromURL(photo.ImageURL)
	require.NoError(t, err)

	err = service.Delete(ctx, admin, folio.DeleteRequest{ID: photo.ID, ImageURL: photo.ImageURL, Confirmed: true})
	require.NoError(t, err)

	_, err = repo.Get(ctx, photo.ID)
	assert.ErrorIs(t, err, folio.ErrNotFound)
	_, err = blobs.Get(ctx, path)
	assert.ErrorIs(t, err, folio.ErrNotFound)
}

func TestDeleteRetryConverges(t *testing.T) {
	service, repo, blobs := newMemService(t)
	ctx := context.Background()

	content := pngBytes(64)
	photo, err := service.Upload(ctx, admin, validDraft(), folio.Payload{Filename: "a.png", Size: int64(len(content)), Content: bytes.NewReader(content)})
	require.NoError(t, err)

	repo.failDelete = 1
	err = service.Delete(ctx, admin, folio.DeleteRequest{ID: photo.ID, Confirmed: true})
	require.ErrorIs(t, err, folio.ErrPartialFailure)
	assert.Empty(t, blobs.blobs)
	assert.Len(t, repo.photos, 1)

	err = service.Delete(ctx, admin, folio.DeleteRequest{ID: photo.ID, Confirmed: true})
	require.NoError(t, err)
	assert.Empty(t, repo.photos)
}

func TestNonAdminCannotMutate(t *testing.T) {
	service, repo, blobs := newMemService(t)
	ctx := context.Background()

	for _, identity := range []string{"", "visitor@example.com"} {
		content := pngBytes(64)
		_, err := service.Upload(ctx, identity, validDraft(), folio.Payload{Filename: "a.png", Size: int64(len(content)), Content: bytes.NewReader(content)})
		assert.ErrorIs(t, err, folio.ErrAuthorization)

		err = service.Delete(ctx, identity, folio.DeleteRequest{ID: uuid.New(), Confirmed: true})
		assert.ErrorIs(t, err, folio.ErrAuthorization)
	}

	assert.Empty(t, repo.photos)
	assert.Empty(t, blobs.blobs)
}

func TestCategoryRoundTrip(t *testing.T) {
	service, _, _ := newMemService(t)
	ctx := context.Background()

	content := pngBytes(64)
	photo, err := service.Upload(ctx, admin, validDraft(), folio.Payload{Filename: "a.png", Size: int64(len(content)), Content: bytes.NewReader(content)})
	require.NoError(t, err)
	require.Equal(t, folio.CategoryWildlife, photo.Category)

	wildlife, err := service.List(ctx, folio.ListQuery{Category: folio.CategoryWildlife})
	require.NoError(t, err)
	assert.True(t, slices.ContainsFunc(wildlife, func(p folio.Photo) bool { return p.ID == photo.ID }))

	cinema, err := service.List(ctx, folio.ListQuery{Category: folio.CategoryCinematography})
	require.NoError(t, err)
	assert.False(t, slices.ContainsFunc(cinema, func(p folio.Photo) bool { return p.ID == photo.ID }))
}
