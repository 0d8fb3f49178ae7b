package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// WHY HELPERS?
// Without helpers, every handler repeats the same boilerplate:
//   w.Header().Set("Content-Type", "application/json")
//   w.WriteHeader(statusCode)
//   json.NewEncoder(w).Encode(data)
//
// With helpers, handlers are cleaner and more consistent:
//   writeJSON(w, http.StatusOK, data)
//   writeError(w, logger, err)
//
// CONSISTENT ERROR FORMAT:
// Every error response from our API has the same shape:
//   {"status": 404, "error": "Not Found", "message": "post not found: id=7",
//    "timestamp": "2026-01-02T15:04:05Z"}
//
// This makes it easy for the frontend to parse errors: it always knows
// what fields to expect, regardless of whether it's a 400, 404, or 500.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/blog-backend/internal/apperror"
	"github.com/sakif/blog-backend/internal/auth"
)

const (
	msgAuthFailed = "authentication failed"
	msgInternal   = "internal server error"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Status    int    `json:"status"`
	Error     string `json:"error"`   // http.StatusText(Status)
	Message   string `json:"message"` // Human-readable description
	Timestamp string `json:"timestamp"`
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// You MUST set headers and status code BEFORE writing the body.
// Once you call w.Write() (which Encode does internally), the headers are sent.
// Any header changes after that are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps a Kind to its HTTP status. The switch has one case per
// apperror.Kinds entry; a kind without a case falls out as false and ends up
// on the 500 path, which the mapping test catches.
func statusFor(kind apperror.Kind) (int, bool) {
	switch kind {
	case apperror.KindNotFound:
		return http.StatusNotFound, true
	case apperror.KindForbidden:
		return http.StatusForbidden, true
	case apperror.KindDuplicate:
		return http.StatusConflict, true
	case apperror.KindBadRequest:
		return http.StatusBadRequest, true
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized, true
	case apperror.KindInvalidCredentials:
		return http.StatusUnauthorized, true
	case apperror.KindValidation:
		return http.StatusBadRequest, true
	}
	return 0, false
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// WHY HERE AND NOT IN THE SERVICE?
// The service layer should not know about HTTP status codes. It returns
// typed *apperror.AppError values; this is the single place that decides
// what a client sees for each of them.
//
// LOGIN FAILURES:
// A failed login wraps auth.ErrBadCredentials around the precise reason
// (unknown email, wrong password). The client must not learn which one it
// was, so that check comes first and always answers 401 "authentication
// failed". The precise reason still goes to the log.
//
// errors.As() UNWRAPPING:
// Services wrap with fmt.Errorf("service: ...: %w", err). errors.As walks
// the chain and fills appErr with the first *AppError it finds.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if errors.Is(err, auth.ErrBadCredentials) {
		logger.Warn("authentication failed", slog.String("error", err.Error()))
		writeStatus(w, http.StatusUnauthorized, msgAuthFailed)
		return
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if status, ok := statusFor(appErr.Kind); ok {
			logger.Warn("request failed",
				slog.Int("status", status),
				slog.String("kind", appErr.Kind.String()),
				slog.String("message", appErr.Message),
			)
			writeStatus(w, status, appErr.Message)
			return
		}
	}

	// Unknown error: return a generic 500.
	// NEVER expose internal error details to the client: the raw message
	// might contain SQL, file paths, or other sensitive info.
	logger.Error("unexpected error", slog.String("error", err.Error()))
	writeStatus(w, http.StatusInternalServerError, msgInternal)
}

func writeStatus(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Unauthorized is handed to auth.RequireAuth so a missing or bad token gets
// the same body as every other 401.
func Unauthorized(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, logger, apperror.LoginRequired())
	}
}

// NotFound answers unmatched routes in the standard error shape.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusNotFound, "no route for "+r.Method+" "+r.URL.Path)
}

// MethodNotAllowed answers a known path used with the wrong verb.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusMethodNotAllowed, "method "+r.Method+" not allowed")
}
