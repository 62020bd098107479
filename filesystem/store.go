// Package filesystem provides a local directory blob store for folio.
// Writes go through a temp file and are published with a hard link, so a
// path is either absent or holds a complete image, and an existing path is
// never replaced.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sagarc03/folio"
)

const tmpPrefix = ".t"

// Store keeps blobs under a sandboxed root directory.
type Store struct {
	root       *os.Root
	publicBase string
}

// NewStore creates a Store rooted at root. publicBase is the URL prefix under
// which the root is served (for example "http://localhost:5708/media").
func NewStore(root *os.Root, publicBase string) *Store {
	return &Store{root: root, publicBase: publicBase}
}

// Get opens a blob for reading. Returns folio.ErrNotFound if the file does not exist.
func (s *Store) Get(ctx context.Context, path string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, folio.ErrNotFound
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		_ = f.Close()
		return nil, folio.ErrNotFound
	}

	return f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Put writes content to a temp file and links it into place. It returns
// folio.ErrAlreadyExists, leaving the existing file untouched, when path is
// taken. The temp file is always removed, so a failed or cancelled Put
// leaves nothing behind.
func (s *Store) Put(ctx context.Context, path, _ string, _ int64, content io.Reader) (folio.SaveResult, error) {
	if err := ctx.Err(); err != nil {
		return folio.SaveResult{}, err
	}

	if !folio.IsValidPath(path) {
		return folio.SaveResult{}, fmt.Errorf("put blob %q: %w", path, folio.ErrValidation)
	}

	if _, err := s.root.Stat(path); err == nil {
		return folio.SaveResult{}, folio.ErrAlreadyExists
	}

	tmpFile := tmpFileName()
	t, err := s.root.Create(tmpFile)
	if err != nil {
		return folio.SaveResult{}, fmt.Errorf("create temp file: %w", err)
	}

	defer func() {
		if closeErr := t.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if rmErr := s.root.Remove(tmpFile); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			slog.Warn("failed to remove tmp file", "err", rmErr)
		}
	}()

	written, err := io.Copy(t, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return folio.SaveResult{}, fmt.Errorf("copy blob contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return folio.SaveResult{}, fmt.Errorf("sync blob: %w", err)
	}

	if destDir := filepath.Dir(path); destDir != "." {
		if err := s.root.MkdirAll(destDir, 0o755); err != nil {
			return folio.SaveResult{}, fmt.Errorf("create blob directory: %w", err)
		}
	}

	if err := s.root.Link(tmpFile, path); err != nil {
		if errors.Is(err, os.ErrExist) {
			return folio.SaveResult{}, folio.ErrAlreadyExists
		}
		return folio.SaveResult{}, fmt.Errorf("publish blob: %w", err)
	}

	return folio.SaveResult{BytesWritten: written}, nil
}

// Delete removes a blob. Returns folio.ErrNotFound if the file does not exist.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.root.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return folio.ErrNotFound
		}
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

// List recursively walks the root directory and returns every stored blob.
// In-flight temp files are skipped.
func (s *Store) List(ctx context.Context) ([]folio.BlobEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := []folio.BlobEntry{}
	if err := s.walkDir(ctx, ".", &entries); err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}

	return entries, nil
}

func (s *Store) walkDir(ctx context.Context, path string, entries *[]folio.BlobEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), path)
	if err != nil {
		return err
	}

	for _, entry := range dirEntries {
		entryPath := filepath.ToSlash(filepath.Join(path, entry.Name()))

		if entry.IsDir() {
			if err := s.walkDir(ctx, entryPath, entries); err != nil {
				return err
			}
			continue
		}

		if strings.HasPrefix(entry.Name(), tmpPrefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("walk dir: %w", err)
		}

		*entries = append(*entries, folio.BlobEntry{Path: entryPath, Size: info.Size()})
	}

	return nil
}

func (s *Store) PublicURL(path string) string {
	return folio.PublicURL(s.publicBase, path)
}

func (s *Store) PathFromURL(url string) (string, error) {
	return folio.PathFromURL(s.publicBase, url)
}

func tmpFileName() string {
	return tmpPrefix + uuid.New().String()
}
