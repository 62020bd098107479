package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/sagarc03/folio"
)

// DefaultTimeout bounds a single request, uploads included.
const DefaultTimeout = 5 * time.Minute

// Client talks to a folio server's JSON API.
type Client struct {
	config     *Config
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()
	if _, err := url.ParseRequestURI(cfg.Server); err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", cfg.Server, err)
	}

	c := &Client{
		config: &Config{
			Server: strings.TrimSuffix(cfg.Server, "/"),
			Token:  cfg.Token,
		},
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Session reports who the server thinks the client is. It works without a
// token, in which case the level is "anonymous".
func (c *Client) Session(ctx context.Context) (*SessionInfo, error) {
	var info SessionInfo
	if err := c.doJSON(ctx, http.MethodGet, "/api/session", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Upload sends one file, or every regular file under a directory when
// Recursive is set. Per-file failures land in the results; the returned error
// is reserved for problems that stop the whole walk.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
	}
	if opts.Category == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyCategory)
	}

	info, err := os.Stat(opts.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("stat local path: %w", err)
	}

	if !info.IsDir() {
		result := c.uploadSingle(ctx, opts.LocalPath, opts)
		return []UploadResult{result}, result.Err
	}

	if !opts.Recursive {
		return nil, fmt.Errorf("%s is a directory (use -r to upload recursively)", opts.LocalPath)
	}

	var results []UploadResult
	walkErr := filepath.WalkDir(opts.LocalPath, func(path string, d fs.DirEntry, fileErr error) error {
		if fileErr != nil {
			return fileErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if strings.HasPrefix(d.Name(), ".") && path != opts.LocalPath {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		fileOpts := opts
		fileOpts.Title = ""
		results = append(results, c.uploadSingle(ctx, path, fileOpts))
		return nil
	})
	if walkErr != nil {
		return results, fmt.Errorf("walk directory: %w", walkErr)
	}

	return results, nil
}

func (c *Client) uploadSingle(ctx context.Context, localPath string, opts UploadOptions) UploadResult {
	result := UploadResult{LocalPath: localPath}

	file, err := os.Open(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		result.Err = fmt.Errorf("open file: %w", err)
		return result
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		result.Err = fmt.Errorf("stat file: %w", err)
		return result
	}
	result.Size = stat.Size()

	contentType := "application/octet-stream"
	if mt, detectErr := mimetype.DetectReader(file); detectErr == nil {
		contentType = mt.String()
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		result.Err = fmt.Errorf("rewind file: %w", err)
		return result
	}

	title := opts.Title
	if title == "" {
		title = folio.TitleFromFilename(localPath)
	}

	fields := [][2]string{
		{"title", title},
		{"description", opts.Description},
		{"caption", opts.Caption},
		{"story", opts.Story},
		{"category", opts.Category},
		{"tags", opts.Tags},
		{"is_featured", strconv.FormatBool(opts.Featured)},
	}

	body, writer := io.Pipe()
	defer func() { _ = body.Close() }()
	form := multipart.NewWriter(writer)

	go func() {
		writer.CloseWithError(writeUploadForm(form, fields, filepath.Base(localPath), contentType, file))
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/api/photos", body)
	if err != nil {
		result.Err = err
		return result
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var photo folio.Photo
	if err := c.do(req, &photo); err != nil {
		result.Err = err
		return result
	}

	result.Photo = photo
	return result
}

func writeUploadForm(form *multipart.Writer, fields [][2]string, filename, contentType string, content io.Reader) error {
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := form.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("write field %s: %w", f[0], err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	header.Set("Content-Type", contentType)

	part, err := form.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create image part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("write image part: %w", err)
	}

	return form.Close()
}

// Delete removes photos one at a time and keeps going past failures.
func (c *Client) Delete(ctx context.Context, opts DeleteOptions) ([]DeleteResult, error) {
	if len(opts.IDs) == 0 {
		return nil, ErrNoIDs
	}

	results := make([]DeleteResult, 0, len(opts.IDs))
	for _, id := range opts.IDs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		query := url.Values{}
		query.Set("confirm", strconv.FormatBool(opts.Confirmed))

		err := c.doJSON(ctx, http.MethodDelete, "/api/photos/"+id.String()+"?"+query.Encode(), nil, nil)
		results = append(results, DeleteResult{ID: id, Deleted: err == nil, Err: err})
	}

	return results, nil
}

func HasDeleteErrors(results []DeleteResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

func (c *Client) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	path := "/api/photos"
	if opts.Category != "" {
		path += "?" + url.Values{"category": {opts.Category}}.Encode()
	}

	var items []folio.Photo
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return &ListResult{Items: items}, nil
}

func (c *Client) Get(ctx context.Context, id uuid.UUID) (*folio.Photo, error) {
	var photo folio.Photo
	if err := c.doJSON(ctx, http.MethodGet, "/api/photos/"+id.String(), nil, &photo); err != nil {
		return nil, err
	}
	return &photo, nil
}

// Feature applies a featured flag and/or display order change.
func (c *Client) Feature(ctx context.Context, opts FeatureOptions) (*folio.Photo, error) {
	if opts.Featured == nil && opts.DisplayOrder == nil {
		return nil, ErrNoChanges
	}

	update := folio.PhotoUpdate{IsFeatured: opts.Featured, DisplayOrder: opts.DisplayOrder}

	var photo folio.Photo
	if err := c.doJSON(ctx, http.MethodPatch, "/api/photos/"+opts.ID.String(), update, &photo); err != nil {
		return nil, err
	}
	return &photo, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.Server+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	body := io.Reader(http.NoBody)
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseServerError(resp.StatusCode, body)
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode, Body: string(body)}

	var se serverError
	if json.Unmarshal(body, &se) == nil {
		apiErr.Code = se.Error
		apiErr.Message = se.Message
		apiErr.Field = se.Field
	}
	return apiErr
}

// APIError is a non-2xx response. Code, Message and Field are filled from the
// server's JSON error body when it has one.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Field      string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
	}
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	return fmt.Sprintf("server error: %d %s - %s", e.StatusCode, e.Code, msg)
}

// Is matches another *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// Sentinel errors for errors.Is checks.
var (
	ErrNotFound     = &APIError{StatusCode: http.StatusNotFound}
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}
	ErrForbidden    = &APIError{StatusCode: http.StatusForbidden}
	ErrBadRequest   = &APIError{StatusCode: http.StatusBadRequest}
	ErrTooLarge     = &APIError{StatusCode: http.StatusRequestEntityTooLarge}
)
