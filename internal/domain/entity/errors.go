package entity

import (
	"errors"
	"fmt"
	"strings"
)

// Input and pipeline errors.
var (
	// ErrInvalidInput indicates that the raw input is empty.
	ErrInvalidInput = errors.New("text must be a non-empty string")

	// ErrUnknownLengthProfile indicates a length preference without a configured profile.
	ErrUnknownLengthProfile = errors.New("unknown length profile")

	// ErrInvalidResponseFormat indicates that the model returned nothing parseable.
	ErrInvalidResponseFormat = errors.New("invalid response format")

	// ErrInsufficientBullets indicates that fewer than MinBullets usable bullets survived filtering.
	ErrInsufficientBullets = errors.New("insufficient bullet points generated")
)

// Upstream completion errors. Clients wrap these with the provider detail.
var (
	ErrAuthentication     = errors.New("authentication failed")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrBadRequest         = errors.New("invalid request")
	ErrServiceUnavailable = errors.New("completion service unavailable")
	ErrTimeout            = errors.New("completion request timed out")
	ErrNetwork            = errors.New("network error")
)

// ValidationError lists every rule the cleaned text failed.
type ValidationError struct {
	Errors []string
}

// Error joins the individual messages.
func (e *ValidationError) Error() string {
	return "text validation failed: " + strings.Join(e.Errors, "; ")
}

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error returns a formatted error message for the field.
func (e *FieldError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ChunkError marks a failure while summarizing one chunk of a multi-chunk input.
type ChunkError struct {
	Index int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d: %v", e.Index+1, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

// IsParseError reports whether err came from parsing model output.
func IsParseError(err error) bool {
	return errors.Is(err, ErrInvalidResponseFormat) || errors.Is(err, ErrInsufficientBullets)
}

// IsUpstreamError reports whether err is one of the completion transport errors.
func IsUpstreamError(err error) bool {
	for _, target := range []error{
		ErrAuthentication, ErrRateLimited, ErrBadRequest,
		ErrServiceUnavailable, ErrTimeout, ErrNetwork,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
