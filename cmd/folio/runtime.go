package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/config"
	"github.com/sagarc03/folio/database"
	"github.com/sagarc03/folio/filesystem"
	"github.com/sagarc03/folio/grantfile"
	"github.com/sagarc03/folio/rolecache"
	"github.com/sagarc03/folio/s3"
	"github.com/sagarc03/folio/session"
)

// deps holds the opened stores for one command run.
type deps struct {
	cfg    *config.Config
	db     database.Database
	photos folio.PhotoRepo
	grants folio.GrantRepo
	roles  folio.RoleRepo
	cache  *rolecache.Cache
	blobs  folio.BlobStore
	// local is set when blobs live on this machine and the server must serve them.
	local   *filesystem.Store
	closers []func()
}

type openOptions struct {
	migrate bool
	blobs   bool
}

func openDeps(ctx context.Context, cfg *config.Config, opts openOptions) (d *deps, err error) {
	d = &deps{cfg: cfg}
	defer func() {
		if err != nil {
			d.Close()
		}
	}()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return d, fmt.Errorf("connect database: %w", err)
	}
	d.db = db
	d.closers = append(d.closers, func() { _ = db.Close() })

	if err = db.Ping(ctx); err != nil {
		return d, fmt.Errorf("ping database: %w", err)
	}

	if opts.migrate {
		if err = db.Migrate(ctx); err != nil {
			return d, fmt.Errorf("migrate database: %w", err)
		}
		slog.Info("database migration complete")
	}

	if err = db.Validate(ctx); err != nil {
		return d, fmt.Errorf("validate database schema: %w", err)
	}

	if d.photos, err = db.PhotoRepo(); err != nil {
		return d, err
	}
	if d.grants, err = db.GrantRepo(); err != nil {
		return d, err
	}
	d.roles = d.grants
	slog.Debug("connected to database", "type", cfg.Database.Type)

	if cfg.Roles.Source == "config" {
		grants, loadErr := grantfile.Load(cfg.Roles.Grants)
		if loadErr != nil {
			return d, fmt.Errorf("load role grants: %w", loadErr)
		}
		d.roles = grantfile.NewMapRoleRepo(grants)
		slog.Debug("roles answered from config", "grants", len(grants))
	}

	if cfg.Roles.Cache.RedisURL != "" {
		client, dialErr := rolecache.Dial(ctx, cfg.Roles.Cache.RedisURL)
		if dialErr != nil {
			return d, fmt.Errorf("connect role cache: %w", dialErr)
		}
		d.closers = append(d.closers, func() { _ = client.Close() })
		d.cache = rolecache.New(client, d.roles, rolecache.Config{
			TTL:    cfg.Roles.Cache.TTL,
			Prefix: cfg.Roles.Cache.Prefix,
		})
		d.roles = d.cache
		slog.Debug("role cache enabled", "ttl", cfg.Roles.Cache.TTL)
	}

	if opts.blobs {
		if err = d.openBlobs(ctx); err != nil {
			return d, err
		}
	}

	return d, nil
}

func (d *deps) openBlobs(ctx context.Context) error {
	switch d.cfg.Storage.Type {
	case "s3":
		sc := d.cfg.Storage.S3
		store, err := s3.New(ctx, s3.Config{
			Endpoint:   sc.Endpoint,
			AccessKey:  sc.AccessKey,
			SecretKey:  sc.SecretKey,
			Region:     sc.Region,
			Bucket:     sc.Bucket,
			UseSSL:     sc.UseSSL,
			PublicBase: sc.PublicBase,
			PublicRead: sc.PublicRead,
		})
		if err != nil {
			return fmt.Errorf("open s3 blob store: %w", err)
		}
		d.blobs = store
		slog.Debug("blob store ready", "type", "s3", "bucket", sc.Bucket)

	default:
		path := d.cfg.Storage.Path
		if err := os.MkdirAll(path, 0o750); err != nil {
			return fmt.Errorf("create storage directory: %w", err)
		}

		root, err := os.OpenRoot(path)
		if err != nil {
			return fmt.Errorf("open storage root: %w", err)
		}
		d.closers = append(d.closers, func() { _ = root.Close() })

		d.local = filesystem.NewStore(root, mediaBase(d.cfg.Server.PublicURL))
		d.blobs = d.local
		slog.Debug("blob store ready", "type", "filesystem", "path", path)
	}

	return nil
}

// mediaBase is where the server exposes filesystem blobs.
func mediaBase(publicURL string) string {
	return strings.TrimSuffix(publicURL, "/") + "/media"
}

func (d *deps) service() (*folio.GalleryService, error) {
	if d.blobs == nil {
		return nil, errors.New("create service: blob store not opened")
	}

	svc, err := folio.NewGalleryService(d.photos, d.blobs, folio.NewGate(d.roles), folio.ServiceConfig{
		MaxUploadBytes: d.cfg.Service.MaxUploadSize,
		CleanupTimeout: time.Duration(d.cfg.Service.CleanupTimeout) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return svc, nil
}

// invalidate drops a cached role answer after a grant changes. Failure only
// delays the change until the cache entry expires.
func (d *deps) invalidate(ctx context.Context, identity, role string) {
	if d.cache == nil {
		return
	}
	if err := d.cache.Invalidate(ctx, identity, role); err != nil {
		slog.Warn("role cache not invalidated; change applies after ttl", "identity", identity, "err", err)
	}
}

// Close releases everything in reverse order of opening.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}

func newSessionManager(cfg *config.Config) (*session.Manager, error) {
	if cfg.Session.Secret == "" {
		return nil, errors.New("session.secret is required (env: FOLIO_SESSION_SECRET)")
	}
	return session.NewManager(session.Config{
		Secret: cfg.Session.Secret,
		Issuer: cfg.Session.Issuer,
		TTL:    cfg.Session.TTL,
	})
}
