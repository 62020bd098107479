// Package s3 provides a blob store backed by any S3-compatible service
// (MinIO locally, a managed object store in production).
package s3

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sagarc03/folio"
)

// Config holds the connection settings for an S3-compatible endpoint.
type Config struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Region     string
	Bucket     string
	PublicBase string
	UseSSL     bool
	PublicRead bool // apply an anonymous GetObject bucket policy
}

// Store keeps blobs as objects in a single bucket.
type Store struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// New creates a MinIO client and makes sure the bucket exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
		slog.Info("created bucket", "bucket", cfg.Bucket)
	}

	if cfg.PublicRead {
		if err := client.SetBucketPolicy(ctx, cfg.Bucket, publicReadPolicy(cfg.Bucket)); err != nil {
			return nil, fmt.Errorf("set bucket policy: %w", err)
		}
	}

	return &Store{client: client, bucket: cfg.Bucket, publicBase: cfg.PublicBase}, nil
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

func (s *Store) exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat object %q: %w", path, err)
}

// Put uploads content unless an object already exists at path. size is
// passed to the client so small images go up in a single request. Upload paths
// carry a random segment, so the existence check is not racing another
// writer of the same key in practice. S3 never exposes a partially uploaded
// object, so a failed Put leaves nothing behind.
func (s *Store) Put(ctx context.Context, path, contentType string, size int64, content io.Reader) (folio.SaveResult, error) {
	if !folio.IsValidPath(path) {
		return folio.SaveResult{}, fmt.Errorf("put object %q: %w", path, folio.ErrValidation)
	}

	found, err := s.exists(ctx, path)
	if err != nil {
		return folio.SaveResult{}, err
	}
	if found {
		return folio.SaveResult{}, folio.ErrAlreadyExists
	}

	info, err := s.client.PutObject(ctx, s.bucket, path, content, size, putOptions(contentType, size))
	if err != nil {
		if errors.Is(err, folio.ErrSizeLimit) {
			return folio.SaveResult{}, err
		}
		return folio.SaveResult{}, fmt.Errorf("put object %q: %w", path, err)
	}

	// With a known size the client stops reading at size bytes, so a longer
	// stream has to be caught here.
	if size >= 0 && hasMore(content) {
		if rmErr := s.client.RemoveObject(context.WithoutCancel(ctx), s.bucket, path, minio.RemoveObjectOptions{}); rmErr != nil {
			slog.Error("failed to remove overrun object", "path", path, "err", rmErr)
		}
		return folio.SaveResult{}, fmt.Errorf("put object %q: %w", path, folio.ErrSizeLimit)
	}

	return folio.SaveResult{BytesWritten: info.Size}, nil
}

// unknownSizePartSize bounds the buffer minio-go allocates per part when the
// length is not known. Without it the client sizes parts for a 5 TiB object.
const unknownSizePartSize = 5 << 20

func putOptions(contentType string, size int64) minio.PutObjectOptions {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if size < 0 {
		opts.PartSize = unknownSizePartSize
	}
	return opts
}

func hasMore(r io.Reader) bool {
	var b [1]byte
	n, err := io.ReadFull(r, b[:])
	return n > 0 || errors.Is(err, folio.ErrSizeLimit)
}

// Get opens the object at path. Returns folio.ErrNotFound if it does not exist.
func (s *Store) Get(ctx context.Context, path string) (io.ReadSeekCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", path, err)
	}

	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		if isNotFound(err) {
			return nil, folio.ErrNotFound
		}
		return nil, fmt.Errorf("get object %q: %w", path, err)
	}

	return obj, nil
}

// Delete removes the object at path. S3 deletes are idempotent, so the object
// is checked first to report folio.ErrNotFound.
func (s *Store) Delete(ctx context.Context, path string) error {
	found, err := s.exists(ctx, path)
	if err != nil {
		return err
	}
	if !found {
		return folio.ErrNotFound
	}

	if err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", path, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]folio.BlobEntry, error) {
	entries := []folio.BlobEntry{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		entries = append(entries, folio.BlobEntry{Path: obj.Key, Size: obj.Size})
	}
	return entries, nil
}

func (s *Store) PublicURL(path string) string {
	return folio.PublicURL(s.publicBase, path)
}

func (s *Store) PathFromURL(url string) (string, error) {
	return folio.PathFromURL(s.publicBase, url)
}

func publicReadPolicy(bucket string) string {
	policy := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
