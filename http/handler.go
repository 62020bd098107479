package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/sagarc03/folio"
)

// multipartMemory is how much of an upload form is held in memory before
// ParseMultipartForm spills to temporary files.
const multipartMemory = 8 << 20

// formOverhead is the allowance for multipart boundaries and text fields on
// top of the image payload limit.
const formOverhead = 64 << 10

type Service interface {
	Get(ctx context.Context, id uuid.UUID) (folio.Photo, error)
	List(ctx context.Context, q folio.ListQuery) ([]folio.Photo, error)
	Gallery(ctx context.Context, q folio.ListQuery) (folio.Gallery, error)
	Upload(ctx context.Context, identity string, d folio.Draft, p folio.Payload) (folio.Photo, error)
	Update(ctx context.Context, identity string, id uuid.UUID, u folio.PhotoUpdate) (folio.Photo, error)
	Delete(ctx context.Context, identity string, req folio.DeleteRequest) error
}

// CallerResolver turns a verified session into a caller with an access level.
// folio.Gate implements it.
type CallerResolver interface {
	Resolve(ctx context.Context, s *folio.Session) folio.Caller
}

// MediaStore serves stored image bytes. Only local backends need it; S3
// buckets serve their own public URLs.
type MediaStore interface {
	Get(ctx context.Context, path string) (io.ReadSeekCloser, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	Sessions       SessionVerifier
	Callers        CallerResolver
	Media          MediaStore // nil disables /media
	MaxUploadBytes int64
	CORS           CORSConfig
}

// Handler provides the HTTP API for the gallery.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	cfg := *config
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = folio.DefaultMaxUploadBytes
	}
	return &Handler{
		config:  cfg,
		service: service,
	}
}

// Router returns an http.Handler with every route mounted.
// Reads are open to anonymous visitors; mutations need a session and the
// service decides whether that session may mutate.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/healthz", h.handleHealth)

	if h.config.Media != nil {
		r.Get("/media/*", h.handleMedia)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(SessionMiddleware(h.config.Sessions))

		r.Get("/session", h.handleSession)
		r.Get("/gallery", h.handleGallery)
		r.Get("/photos", h.handleList)
		r.Get("/photos/{id}", h.handleGet)

		r.Group(func(r chi.Router) {
			r.Use(RequireSession)
			r.Post("/photos", h.handleUpload)
			r.Patch("/photos/{id}", h.handleUpdate)
			r.Delete("/photos/{id}", h.handleDelete)
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sessionResponse struct {
	Identity string `json:"identity,omitempty"`
	Level    string `json:"level"`
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	caller := folio.Anonymous
	if h.config.Callers != nil {
		caller = h.config.Callers.Resolve(r.Context(), SessionFromContext(r.Context()))
	}

	_ = WriteJSON(w, http.StatusOK, sessionResponse{
		Identity: caller.Identity,
		Level:    caller.Level.String(),
	})
}

func listQuery(r *http.Request) folio.ListQuery {
	return folio.ListQuery{Category: folio.Category(r.URL.Query().Get("category"))}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	photos, err := h.service.List(r.Context(), listQuery(r))
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, photos)
}

func (h *Handler) handleGallery(w http.ResponseWriter, r *http.Request) {
	gallery, err := h.service.Gallery(r.Context(), listQuery(r))
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, gallery)
}

func photoID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, &folio.ValidationError{Field: "id", Reason: "must be a UUID"}
	}
	return id, nil
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := photoID(r)
	if err != nil {
		HandleError(w, err)
		return
	}

	photo, err := h.service.Get(r.Context(), id)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, photo)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Non-admins are turned away before the body is read or spooled.
	if h.config.Callers != nil && !h.config.Callers.Resolve(r.Context(), SessionFromContext(r.Context())).IsAdmin() {
		HandleError(w, folio.ErrAuthorization)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes+formOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			HandleError(w, folio.ErrSizeLimit)
			return
		}
		WriteError(w, http.StatusBadRequest, "invalid_request", "Expected a multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	featured := false
	if v := r.FormValue("is_featured"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			HandleError(w, &folio.ValidationError{Field: "is_featured", Reason: "must be true or false"})
			return
		}
		featured = b
	}

	draft := folio.Draft{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Caption:     r.FormValue("caption"),
		Story:       r.FormValue("story"),
		Category:    r.FormValue("category"),
		Tags:        r.FormValue("tags"),
		IsFeatured:  featured,
	}

	payload := folio.Payload{}
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()
		payload = folio.Payload{Filename: header.Filename, Size: header.Size, Content: file}
	case errors.Is(err, http.ErrMissingFile):
		// The service reports the missing image as a validation failure.
	default:
		WriteError(w, http.StatusBadRequest, "invalid_request", "Unreadable image part")
		return
	}

	photo, err := h.service.Upload(r.Context(), SessionFromContext(r.Context()).Identity, draft, payload)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, photo)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := photoID(r)
	if err != nil {
		HandleError(w, err)
		return
	}

	var update folio.PhotoUpdate
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&update); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Expected a JSON body with is_featured and/or display_order")
		return
	}

	photo, err := h.service.Update(r.Context(), SessionFromContext(r.Context()).Identity, id, update)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, photo)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := photoID(r)
	if err != nil {
		HandleError(w, err)
		return
	}

	confirmed := false
	if v := r.URL.Query().Get("confirm"); v != "" {
		confirmed, _ = strconv.ParseBool(v)
	}

	req := folio.DeleteRequest{
		ID:        id,
		ImageURL:  r.URL.Query().Get("image_url"),
		Confirmed: confirmed,
	}

	if err := h.service.Delete(r.Context(), SessionFromContext(r.Context()).Identity, req); err != nil {
		HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMedia(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(chi.URLParam(r, "*"), "/")

	if !folio.IsValidPath(path) {
		WriteError(w, http.StatusBadRequest, "invalid_path", "Invalid path")
		return
	}

	content, err := h.config.Media.Get(r.Context(), path)
	if err != nil {
		HandleError(w, err)
		return
	}
	defer func() { _ = content.Close() }()

	// Blob paths are never reused, so the bytes behind one never change.
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("Content-Security-Policy", "sandbox")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, path, time.Time{}, content)
}
