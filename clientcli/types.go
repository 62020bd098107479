package clientcli

import (
	"github.com/google/uuid"

	"github.com/sagarc03/folio"
)

// UploadOptions configures an upload. Title defaults to the file name when
// empty, and is ignored for recursive uploads where every file is titled
// after itself.
type UploadOptions struct {
	LocalPath   string
	Title       string
	Description string
	Caption     string
	Story       string
	Category    string
	Tags        string
	Featured    bool
	Recursive   bool
}

// UploadResult is the outcome of uploading a single file.
type UploadResult struct {
	LocalPath string      `json:"local_path"`
	Photo     folio.Photo `json:"photo"`
	Size      int64       `json:"size_bytes"`
	Err       error       `json:"-"` // nil on success
}

// DeleteOptions configures a delete. The server refuses deletes that are not
// confirmed, so callers prompt before setting Confirmed.
type DeleteOptions struct {
	IDs       []uuid.UUID
	Confirmed bool
}

// DeleteResult is the outcome of deleting a single photo.
type DeleteResult struct {
	ID      uuid.UUID `json:"id"`
	Deleted bool      `json:"deleted"`
	Err     error     `json:"-"` // nil on success
}

// ListOptions configures a list. An empty category lists every photo.
type ListOptions struct {
	Category string
}

// ListResult holds photos in display order.
type ListResult struct {
	Items []folio.Photo `json:"items"`
}

// FeatureOptions configures a featured/order update. Nil fields are left
// unchanged on the server.
type FeatureOptions struct {
	ID           uuid.UUID
	Featured     *bool
	DisplayOrder *int
}

// SessionInfo is what the server resolves the client's token to.
type SessionInfo struct {
	Identity string `json:"identity,omitempty"`
	Level    string `json:"level"`
}

// serverError mirrors the JSON error body returned by the server.
type serverError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}
