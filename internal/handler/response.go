package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or WriteError, so the JSON shape
// and the error-to-status mapping live in exactly one place.
//
// ERROR FORMAT:
// Every error response has the same body and nothing else:
//
//	{"error": "blog not found with id ck1..."}

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/bloglist/internal/apperror"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON sends a JSON response with the given status code.
// Headers must be set before WriteHeader; changes after it are ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are already sent, all we can do is log
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// StatusFor classifies err into an HTTP status. The order of the cases is
// the precedence when an error carries more than one kind.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation),
		errors.Is(err, apperror.ErrInvalidID),
		errors.Is(err, apperror.ErrDuplicate):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorWriter returns a function that writes err as a classified JSON error
// response, logging anything that classifies as a 500. The auth middleware
// uses it so its 401s look like every other error.
func ErrorWriter(logger *slog.Logger) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		WriteError(w, r, err, logger)
	}
}

// WriteError maps a domain error to an HTTP status and sends it.
//
// The message of the *apperror.AppError found in the chain is shown as is.
// Anything unclassified becomes a 500 with a generic message; the raw error
// may contain SQL or file paths and only goes to the log.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := StatusFor(err)

	var appErr *apperror.AppError
	if status == http.StatusInternalServerError || !errors.As(err, &appErr) {
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	writeJSON(w, status, ErrorResponse{Error: appErr.Message})
}

// NotFound answers requests for routes that do not exist, including a known
// path requested with a method it does not serve.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "unknown endpoint"})
}

// decodeJSON reads a JSON request body into dst. A missing body decodes as
// {} and leaves dst untouched; a malformed body is a validation error,
// reported as 400.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperror.ValidationFailed("body", "malformatted JSON body")
	}
	return nil
}
