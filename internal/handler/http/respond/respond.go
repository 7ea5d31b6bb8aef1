// Package respond writes the JSON envelope shared by every endpoint:
// {success, data} on success and {success, error} on failure. Internal
// error details are logged after sanitization and never returned for 5xx.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"blog-summarizer/internal/handler/http/requestid"
	"blog-summarizer/internal/observability/logging"
)

// timestampLayout matches JavaScript's Date.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Envelope is the top-level response body.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Message    string `json:"message"`
	Status     int    `json:"status"`
	Timestamp  string `json:"timestamp"`
	RequestID  string `json:"requestId,omitempty"`
	Path       string `json:"path,omitempty"`
	RetryAfter int    `json:"retryAfter,omitempty"`
	Details    any    `json:"details,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// headers are already sent
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Success wraps data in a success envelope.
func Success(w http.ResponseWriter, code int, data any) {
	JSON(w, code, Envelope{Success: true, Data: data})
}

// Failure writes a failure envelope with message and optional details.
func Failure(w http.ResponseWriter, r *http.Request, code int, message string, details any) {
	Write(w, r, ErrorBody{Status: code, Message: message, Details: details})
}

// Write fills in the timestamp and request ID of body and sends it.
func Write(w http.ResponseWriter, r *http.Request, body ErrorBody) {
	if body.Status == 0 {
		body.Status = http.StatusInternalServerError
	}
	if body.Message == "" {
		body.Message = http.StatusText(body.Status)
	}
	body.Timestamp = time.Now().UTC().Format(timestampLayout)
	if body.RequestID == "" && r != nil {
		body.RequestID = requestid.FromContext(r.Context())
	}
	JSON(w, body.Status, Envelope{Success: false, Error: &body})
}

// AppError carries a user-facing message and status alongside the internal cause.
type AppError struct {
	UserMsg string
	Err     error
	Code    int
	Details any
}

// Error returns the internal message when there is one.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

// Unwrap returns the internal cause.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}

// SafeError writes err as a failure envelope. An *AppError supplies the
// status and message; anything else becomes a generic 500. The cause is
// logged with secrets masked.
func SafeError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	code := http.StatusInternalServerError
	msg := "Internal server error"
	var details any

	var appErr *AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		msg = appErr.UserMsg
		details = appErr.Details
	}
	if code >= http.StatusInternalServerError {
		details = nil
	}

	ctx := contextOf(r)
	level := slog.LevelWarn
	if code >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(ctx).Log(ctx, level, "request failed",
		slog.Int("status", code),
		slog.String("user_message", msg),
		slog.String("error", SanitizeError(err)))

	Write(w, r, ErrorBody{Status: code, Message: msg, Details: details})
}

func contextOf(r *http.Request) context.Context {
	if r == nil {
		return context.Background()
	}
	return r.Context()
}
