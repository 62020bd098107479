// Package http provides the HTTP API for the folio gallery.
//
// Routes:
//
//	GET    /healthz                 liveness
//	GET    /api/session             resolved caller for the bearer token
//	GET    /api/photos?category=    ordered photo list
//	GET    /api/photos/{id}         photo detail
//	GET    /api/gallery?category=   composed gallery (hero + tiles)
//	POST   /api/photos              multipart upload (image + fields), admin
//	PATCH  /api/photos/{id}         {is_featured?, display_order?}, admin
//	DELETE /api/photos/{id}?confirm=true[&image_url=], admin
//	GET    /media/*                 stored image bytes (local blob store only)
//
// # Sessions
//
// Callers authenticate with "Authorization: Bearer <token>". SessionMiddleware
// verifies the token through a SessionVerifier; the session package provides
// the JWT implementation. Requests without a token are anonymous and may
// only read. Mutating routes need a session, and the service then checks the
// admin capability:
//
//	sessions, _ := session.NewManager(session.Config{Secret: secret})
//	handler := http.NewHandler(&http.HandlerConfig{
//	    Sessions: sessions,
//	    Callers:  folio.NewGate(roles),
//	    Media:    blobs,
//	}, service)
//	http.ListenAndServe(":8080", handler.Router())
//
// # Errors
//
// Failures are JSON bodies {"error", "message", "field"} with status 400 for
// validation and missing confirmation, 401 for a bad or missing session, 403
// for a non-admin mutation, 404, 409, 413 for oversized uploads and 500 for
// storage or partial failures.
package http
