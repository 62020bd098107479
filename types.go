package folio

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryCinematography Category = "cinematography"
	CategoryWildlife       Category = "wildlife"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryCinematography, CategoryWildlife:
		return true
	default:
		return false
	}
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid category: %s (valid categories: cinematography, wildlife)", s)
	}
	return c, nil
}

type Photo struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Caption      string    `json:"caption,omitempty"`
	Story        string    `json:"story,omitempty"`
	Category     Category  `json:"category"`
	ImageURL     string    `json:"image_url"`
	Tags         []string  `json:"tags"`
	IsFeatured   bool      `json:"is_featured"`
	DisplayOrder int       `json:"display_order"`
	Owner        string    `json:"owner"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewPhoto is a validated record ready for insertion. A nil DisplayOrder asks
// the repo to place the photo after every existing one.
type NewPhoto struct {
	Title        string
	Description  string
	Caption      string
	Story        string
	Category     Category
	ImageURL     string
	Tags         []string
	IsFeatured   bool
	DisplayOrder *int
	Owner        string
}

// Draft is the caller-supplied metadata for an upload, before validation.
type Draft struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
	Caption     string `json:"caption" validate:"max=500"`
	Story       string `json:"story" validate:"max=2000"`
	Category    string `json:"category" validate:"required,oneof=cinematography wildlife"`
	Tags        string `json:"tags" validate:"max=500"`
	IsFeatured  bool   `json:"is_featured"`
}

// Payload is the raw image being uploaded. Size is the declared byte count;
// reading more than Size bytes aborts the upload.
type Payload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// PhotoUpdate carries the admin-only mutations. Nil fields are left unchanged.
type PhotoUpdate struct {
	IsFeatured   *bool `json:"is_featured,omitempty"`
	DisplayOrder *int  `json:"display_order,omitempty"`
}

// DeleteRequest identifies the photo to remove. ImageURL may be empty, in
// which case the stored reference is used.
type DeleteRequest struct {
	ID        uuid.UUID
	ImageURL  string
	Confirmed bool
}

type ListQuery struct {
	Category Category
}

type SaveResult struct {
	BytesWritten int64
}

type BlobEntry struct {
	Path string
	Size int64
}

// Tables holds configurable table names for the photo and role grant tables.
type Tables struct {
	Photos     string `mapstructure:"photos"`
	RoleGrants string `mapstructure:"role_grants"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Photos == "" {
		return errors.New("validate tables: photos table name cannot be empty")
	}

	if !IsValidTableName(t.Photos) {
		return fmt.Errorf("validate tables: invalid photos table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Photos)
	}

	if t.RoleGrants == "" {
		return errors.New("validate tables: role grants table name cannot be empty")
	}

	if !IsValidTableName(t.RoleGrants) {
		return fmt.Errorf("validate tables: invalid role grants table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.RoleGrants)
	}

	if t.Photos == t.RoleGrants {
		return errors.New("validate tables: photos and role grants tables must differ")
	}

	return nil
}
