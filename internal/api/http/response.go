package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"rental-desk-backend/internal/logger"
	"rental-desk-backend/internal/service"
)

const maxJSONBody = 4 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if !service.IsClientError(err) {
		logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}
	status := statusFor(err)
	logger.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSessionClosed), errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, service.ErrIncompleteReturn):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a single JSON object from the request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", service.ErrInvalidInput)
		}
		return fmt.Errorf("%w: malformed JSON: %v", service.ErrInvalidInput, err)
	}
	return nil
}
