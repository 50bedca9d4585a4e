package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	app_errors "prism-ai/backend/internal/errors"
)

// Shared response DTOs and helpers for consistent HTTP responses.

// FieldIssue is one validation problem, tied to the field that caused it.
type FieldIssue struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ErrorResponse is the standard JSON error body. Issues is populated for
// validation failures only.
type ErrorResponse struct {
	Error  string       `json:"error"`
	Issues []FieldIssue `json:"issues,omitempty"`
}

// StatusResponse is the generic success body for mutations that return no
// resource.
type StatusResponse struct {
	Status string `json:"status"`
}

// respondWithError maps domain errors to HTTP status codes and writes the
// standard error body. The detailed error is logged; clients get a stable
// message that does not leak internals.
func respondWithError(w http.ResponseWriter, err error) {
	var statusCode int
	var body ErrorResponse

	var vErr *validationError
	switch {
	case errors.As(err, &vErr):
		statusCode = http.StatusBadRequest
		body = ErrorResponse{Error: "Request validation failed.", Issues: vErr.Issues}
	case errors.Is(err, app_errors.ErrBadRequest):
		statusCode = http.StatusBadRequest
		body = ErrorResponse{Error: "Request body could not be parsed."}
	case errors.Is(err, app_errors.ErrValidation):
		statusCode = http.StatusBadRequest
		body = ErrorResponse{Error: err.Error()}
	case errors.Is(err, app_errors.ErrNotFound):
		statusCode = http.StatusNotFound
		body = ErrorResponse{Error: "The requested resource was not found."}
	case errors.Is(err, app_errors.ErrProviderUnavailable):
		statusCode = http.StatusBadGateway
		body = ErrorResponse{Error: "The model provider is unavailable. Please try again later."}
	default:
		statusCode = http.StatusInternalServerError
		body = ErrorResponse{Error: fmt.Sprintf("An unexpected internal server error occurred: %v", err)}
	}

	slog.Warn("Responding with error", "status_code", statusCode, "internal_error", err)
	respondWithJSON(w, statusCode, body)
}

// respondWithJSON marshals a payload and writes it with the given status.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

// writeStreamEvent marshals data and writes it as one SSE data frame. A
// write failure signals a closed client connection.
func writeStreamEvent(w http.ResponseWriter, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to marshal stream data to JSON", "error", err)
		return nil
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", string(jsonData)); err != nil {
		return fmt.Errorf("failed to write data to stream: %w", err)
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}

// sendStreamError emits a structured error on an already-open SSE stream
// under the "error" event name so clients can listen for it specifically.
func sendStreamError(w http.ResponseWriter, message string) {
	slog.Warn("Sending stream error to client", "message", message)
	jsonData, err := json.Marshal(ErrorResponse{Error: message})
	if err != nil {
		slog.Error("Failed to marshal stream error payload", "error", err)
		return
	}
	if _, err := fmt.Fprintf(w, "event: error\ndata: %s\n\n", string(jsonData)); err != nil {
		slog.Warn("Failed to write stream error, client might have disconnected", "error", err)
		return
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}
