package filesystem_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "http://localhost:5708/media"

func newStore(t *testing.T) (*filesystem.Store, string) {
	t.Helper()
	tempDir := t.TempDir()
	root, err := os.OpenRoot(tempDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })
	return filesystem.NewStore(root, base), tempDir
}

func TestStore_Get_Success(t *testing.T) {
	store, dir := newStore(t)

	content := []byte("test content")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.jpg"), content, 0o644))

	result, err := store.Get(context.Background(), "test.jpg")
	require.NoError(t, err)

	readContent, err := io.ReadAll(result)
	assert.NoError(t, err)
	assert.Equal(t, content, readContent)
	assert.NoError(t, result.Close())
}

func TestStore_Get_ContextCanceled(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := store.Get(ctx, "test.jpg")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_Get_NotFound(t *testing.T) {
	store, dir := newStore(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "owner"), 0o755))

	_, err := store.Get(context.Background(), "nonexistent.jpg")
	assert.ErrorIs(t, err, folio.ErrNotFound)

	_, err = store.Get(context.Background(), "owner")
	assert.ErrorIs(t, err, folio.ErrNotFound)
}

func TestStore_Put_Success(t *testing.T) {
	store, dir := newStore(t)

	content := []byte("image bytes")
	result, err := store.Put(context.Background(), "owner/1-abcd1234.png", "image/png", -1, bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), result.BytesWritten)

	onDisk, err := os.ReadFile(filepath.Join(dir, "owner", "1-abcd1234.png"))
	require.NoError(t, err)
	assert.Equal(t, content, onDisk)

	leftovers, err := filepath.Glob(filepath.Join(dir, ".t*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestStore_Put_RefusesExistingPath(t *testing.T) {
	store, dir := newStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "owner/a.png", "image/png", -1, bytes.NewReader([]byte("original")))
	require.NoError(t, err)

	_, err = store.Put(ctx, "owner/a.png", "image/png", -1, bytes.NewReader([]byte("replacement")))
	assert.ErrorIs(t, err, folio.ErrAlreadyExists)

	onDisk, err := os.ReadFile(filepath.Join(dir, "owner", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), onDisk)
}

func TestStore_Put_InvalidPath(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Put(context.Background(), "../escape.png", "image/png", -1, bytes.NewReader(nil))
	assert.ErrorIs(t, err, folio.ErrValidation)
}

func TestStore_Put_ContextCanceledBefore(t *testing.T) {
	store, dir := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Put(ctx, "a.png", "image/png", -1, bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(filepath.Join(dir, "a.png"))
	assert.True(t, os.IsNotExist(statErr))
}

type slowReader struct {
	data   []byte
	pos    int
	cancel context.CancelFunc
}

func (r *slowReader) Read(p []byte) (n int, err error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	r.cancel()
	n = copy(p, r.data[r.pos:r.pos+1])
	r.pos += n
	return n, nil
}

func TestStore_Put_ContextCanceledDuringCopy(t *testing.T) {
	store, dir := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	reader := &slowReader{data: []byte("test content"), cancel: cancel}

	result, err := store.Put(ctx, "a.png", "image/png", -1, reader)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), result.BytesWritten)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no partial blob or temp file left behind")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, folio.ErrSizeLimit
}

func TestStore_Put_ReaderError(t *testing.T) {
	store, dir := newStore(t)

	_, err := store.Put(context.Background(), "owner/a.png", "image/png", -1, io.MultiReader(bytes.NewReader([]byte("head")), failingReader{}))
	assert.ErrorIs(t, err, folio.ErrSizeLimit)

	_, statErr := os.Stat(filepath.Join(dir, "owner", "a.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestStore_Delete(t *testing.T) {
	store, dir := newStore(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("x"), 0o644))

	assert.NoError(t, store.Delete(ctx, "a.png"))
	assert.ErrorIs(t, store.Delete(ctx, "a.png"), folio.ErrNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, store.Delete(cancelled, "a.png"), context.Canceled)
}

func TestStore_List(t *testing.T) {
	store, dir := newStore(t)
	ctx := context.Background()

	entries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "owner", "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "owner", "a.png"), []byte("12345"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "owner", "nested", "b.jpg"), []byte("12"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tinflight"), []byte("partial"), 0o644))

	entries, err = store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []folio.BlobEntry{
		{Path: "owner/a.png", Size: 5},
		{Path: "owner/nested/b.jpg", Size: 2},
	}, entries)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.List(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_URLRoundTrip(t *testing.T) {
	store, _ := newStore(t)

	u := store.PublicURL("owner/1-abcd1234.png")
	assert.Equal(t, base+"/owner/1-abcd1234.png", u)

	p, err := store.PathFromURL(u)
	require.NoError(t, err)
	assert.Equal(t, "owner/1-abcd1234.png", p)

	_, err = store.PathFromURL("https://elsewhere.example.com/owner/1.png")
	assert.ErrorIs(t, err, folio.ErrValidation)
}

func TestStore_Integration_PutGetDelete(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	content := []byte("integration")
	_, err := store.Put(ctx, "owner/i.png", "image/png", -1, bytes.NewReader(content))
	require.NoError(t, err)

	rc, err := store.Get(ctx, "owner/i.png")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, content, got)

	require.NoError(t, store.Delete(ctx, "owner/i.png"))
	_, err = store.Get(ctx, "owner/i.png")
	assert.ErrorIs(t, err, folio.ErrNotFound)
}

func TestStore_ConcurrentPutsSamePath(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := range 10 {
		wg.Go(func() {
			_, err := store.Put(ctx, "owner/same.png", "image/png", -1, bytes.NewReader(fmt.Appendf(nil, "content-%d", i)))
			results <- err
		})
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, folio.ErrAlreadyExists)
	}
	assert.Equal(t, 1, succeeded)

	entries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
