package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration validation.
var (
	ErrTokenRequired  = errors.New("session token is required")
	ErrConfigRequired = errors.New("config is required")
)

// Errors for input validation.
var (
	ErrNoIDs         = errors.New("no photo ids provided")
	ErrEmptyPath     = errors.New("path is required")
	ErrEmptyCategory = errors.New("category is required")
	ErrNoChanges     = errors.New("nothing to update")
)
