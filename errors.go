package folio

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a blob path is already taken
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation is returned when input shape, length or enum checks fail
	ErrValidation = errors.New("validation failed")
	// ErrAuthorization is returned when a non-admin caller attempts a mutation
	ErrAuthorization = errors.New("not authorized")
	// ErrUnauthenticated is returned when a session token cannot be verified
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrSizeLimit is returned when an upload payload exceeds the configured limit
	ErrSizeLimit = errors.New("payload too large")
	// ErrStoreWrite is returned when a blob or metadata write fails
	ErrStoreWrite = errors.New("store write failed")
	// ErrPartialFailure is returned when only one half of a two-store operation completed
	ErrPartialFailure = errors.New("partial failure")
	// ErrConfirmationRequired is returned when a destructive action was not confirmed
	ErrConfirmationRequired = errors.New("confirmation required")
)

// ValidationError names the first input field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// PartialFailureError reports a two-store operation where Completed succeeded
// and Failed did not. Path is the blob path involved, so an operator can
// reconcile by hand.
type PartialFailureError struct {
	Op        string
	Completed string
	Failed    string
	Path      string
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s: %s succeeded but %s failed (blob %s): %v", e.Op, e.Completed, e.Failed, e.Path, e.Err)
}

// LeavesOrphan reports whether a blob was written that no record references.
// Retrying such an operation writes a new blob; the orphan needs reconciling.
func (e *PartialFailureError) LeavesOrphan() bool {
	return e.Completed == "blob write"
}

func (e *PartialFailureError) Is(target error) bool {
	return target == ErrPartialFailure
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}
