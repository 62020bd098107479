package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/folio"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	writeErrorResponse(w, code, ErrorResponse{Error: errCode, Message: message})
}

func writeErrorResponse(w http.ResponseWriter, code int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type.
// Confirmation is checked before validation because a missing confirmation
// carries both.
func HandleError(w http.ResponseWriter, err error) {
	var ve *folio.ValidationError

	switch {
	case errors.Is(err, folio.ErrConfirmationRequired):
		slog.Info("request rejected", "error", err)
		writeErrorResponse(w, http.StatusBadRequest, ErrorResponse{
			Error:   "confirmation_required",
			Message: "Deletion must be confirmed",
			Field:   "confirm",
		})

	case errors.As(err, &ve):
		slog.Info("request rejected", "error", err)
		writeErrorResponse(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: ve.Error(),
			Field:   ve.Field,
		})

	case errors.Is(err, folio.ErrValidation):
		slog.Info("request rejected", "error", err)
		WriteError(w, http.StatusBadRequest, "validation_failed", "Invalid input")

	case errors.Is(err, folio.ErrUnauthenticated):
		slog.Info("request rejected", "error", err)
		WriteError(w, http.StatusUnauthorized, "unauthenticated", "Invalid or expired session")

	case errors.Is(err, folio.ErrAuthorization):
		slog.Info("request rejected", "error", err)
		WriteError(w, http.StatusForbidden, "forbidden", "Admin role required")

	case errors.Is(err, folio.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "Photo not found")

	case errors.Is(err, folio.ErrAlreadyExists):
		slog.Warn("request conflict", "error", err)
		WriteError(w, http.StatusConflict, "conflict", "Resource already exists")

	case errors.Is(err, folio.ErrSizeLimit):
		slog.Info("request rejected", "error", err)
		WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Image exceeds the upload limit")

	case errors.Is(err, folio.ErrPartialFailure):
		slog.Error("request partially applied", "error", err)
		WriteError(w, http.StatusInternalServerError, "partial_failure", partialFailureMessage(err))

	case errors.Is(err, folio.ErrStoreWrite):
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "store_write_failed", "Storage write failed")

	case errors.Is(err, context.Canceled):
		slog.Info("request cancelled", "error", err)
		WriteError(w, http.StatusServiceUnavailable, "cancelled", "Request cancelled")

	default:
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}

func partialFailureMessage(err error) string {
	var pf *folio.PartialFailureError
	if errors.As(err, &pf) && pf.LeavesOrphan() {
		return "Photo not saved; an unreferenced image remains until folio reconcile --prune runs"
	}
	return "Operation partially completed; retrying converges"
}
