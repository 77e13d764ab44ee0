package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"learnloop/internal/contextutil"
	"learnloop/internal/extract"
	"learnloop/internal/indexer"
	"learnloop/internal/llm"
	"learnloop/internal/rag"
	"learnloop/internal/service"
	"learnloop/internal/storage"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps an error to its HTTP status code.
func statusFor(err error) int {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, rag.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, extract.ErrUnsupportedFormat),
		errors.Is(err, indexer.ErrEmptyContent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, llm.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleError logs err and writes the matching error response. Internal errors are
// reported with msg instead of the error text.
func handleError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	logger := contextutil.LoggerFromContext(ctx)
	status := statusFor(err)

	if status == http.StatusInternalServerError {
		logger.ErrorContext(ctx, msg, "error", err)
		writeError(w, status, msg)
		return
	}

	logger.WarnContext(ctx, msg, "status", status, "error", err)
	writeError(w, status, err.Error())
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &service.ValidationError{Field: "body", Message: "invalid request body"}
	}
	return nil
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}
