// Package api provides the HTTP handlers and standardized error envelope
// for the ranking API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/openlove-social/openlove/internal/middleware"
	"github.com/openlove-social/openlove/internal/post"
	"github.com/openlove-social/openlove/internal/profile"
	"github.com/openlove-social/openlove/internal/swipe"
	"github.com/openlove-social/openlove/internal/trending"
)

// Common error codes used throughout the API.
const (
	// ErrCodeValidation indicates input validation failure.
	ErrCodeValidation = "validation_error"

	// ErrCodeInvalidRange indicates a malformed ranking window, pagination,
	// or location parameter.
	ErrCodeInvalidRange = "invalid_range"

	// ErrCodeQuotaExceeded indicates the daily swipe allowance is spent.
	ErrCodeQuotaExceeded = "quota_exceeded"

	// ErrCodeNothingToRewind indicates there is no recent decision to undo.
	ErrCodeNothingToRewind = "nothing_to_rewind"

	// ErrCodeUnauthorized indicates authentication failure.
	ErrCodeUnauthorized = "unauthorized"

	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound = "not_found"

	// ErrCodeRateLimited indicates the per-minute rate limit was exceeded.
	ErrCodeRateLimited = "rate_limited"

	// ErrCodeBadRequest indicates a malformed request.
	ErrCodeBadRequest = "bad_request"

	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal = "internal_error"
)

// ErrorResponse represents the standard error response format.
// All API errors return JSON in this structure: {"error": {"code": "...", "message": "..."}}
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error code and human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError writes a standardized JSON error response with the given
// status code. Callers should store the code on the request context with
// middleware.SetErrorCode first so the request log carries it.
func WriteError(w http.ResponseWriter, ctx context.Context, status int, code, message string) {
	errResp := ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}

	data, err := json.Marshal(errResp)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal error response", "error", err)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.ErrorContext(ctx, "failed to write error response", "error", err)
	}
}

// WriteDomainError maps a domain error to its status and code and writes
// the envelope. Unknown errors become 500 internal_error with a generic
// message so internals never leak to clients.
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := mapDomainError(err)
	ctx := middleware.SetErrorCode(r.Context(), code)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", "error", err)
	}
	WriteError(w, ctx, status, code, message)
}

func mapDomainError(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, trending.ErrInvalidRange):
		return http.StatusBadRequest, ErrCodeInvalidRange, err.Error()
	case errors.Is(err, swipe.ErrQuotaExceeded):
		return http.StatusTooManyRequests, ErrCodeQuotaExceeded, "Daily limit reached for your plan"
	case errors.Is(err, swipe.ErrNothingToRewind):
		return http.StatusConflict, ErrCodeNothingToRewind, "No recent swipe to rewind"
	case errors.Is(err, swipe.ErrInvalidAction), errors.Is(err, swipe.ErrSelfSwipe):
		return http.StatusBadRequest, ErrCodeValidation, err.Error()
	case errors.Is(err, profile.ErrProfileNotFound):
		return http.StatusNotFound, ErrCodeNotFound, "Profile not found"
	case errors.Is(err, post.ErrPostNotFound):
		return http.StatusNotFound, ErrCodeNotFound, "Post not found"
	default:
		return http.StatusInternalServerError, ErrCodeInternal, "Internal server error"
	}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, ctx context.Context, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
