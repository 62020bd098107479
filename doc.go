// Package folio is the gallery content core of a personal portfolio site.
//
// Owners upload, tag, order, feature and delete photographs; anonymous
// visitors browse a composed grid and a per-photo detail view. Every photo
// lives in two independent stores: a metadata record (PhotoRepo) and an image
// blob (BlobStore). Writes that span both are run as sagas with explicit
// compensation, so a failure either leaves nothing behind or is reported as a
// *PartialFailureError naming the orphaned blob.
//
// # Key Components
//
//   - GalleryService: upload, delete, update, list and compose operations
//   - PhotoRepo: metadata persistence (PostgreSQL, SQLite)
//   - BlobStore: image storage (filesystem, S3-compatible)
//   - Gate: resolves sessions into callers and answers capability checks
//   - Compose / LayoutFor: pure gallery layout computation
//
// # Example Usage
//
//	gate := folio.NewGate(roles)
//	service, err := folio.NewGalleryService(repo, blobs, gate, folio.ServiceConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	photo, err := service.Upload(ctx, "owner@example.com", draft, payload)
//	gallery, err := service.Gallery(ctx, folio.ListQuery{})
//
// See the http package for the JSON API and the database package for the
// metadata backends.
package folio
