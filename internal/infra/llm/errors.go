package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"blog-summarizer/internal/domain/entity"
)

// classify maps a provider failure onto the upstream error taxonomy. status
// is the HTTP status reported by the SDK, or 0 when no response was received.
func classify(provider string, status int, err error) error {
	if err == nil {
		return nil
	}

	var kind error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = entity.ErrAuthentication
	case status == http.StatusTooManyRequests:
		kind = entity.ErrRateLimited
	case status == http.StatusRequestTimeout:
		kind = entity.ErrTimeout
	case status >= http.StatusInternalServerError:
		kind = entity.ErrServiceUnavailable
	case status >= http.StatusBadRequest:
		kind = entity.ErrBadRequest
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", provider, err)
	case errors.Is(err, context.DeadlineExceeded):
		kind = entity.ErrTimeout
	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			kind = entity.ErrTimeout
		} else {
			kind = entity.ErrNetwork
		}
	}

	return fmt.Errorf("%s: %w: %w", provider, kind, err)
}

// Outcome is the metrics label for the result of one completion call.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, entity.ErrAuthentication):
		return "authentication"
	case errors.Is(err, entity.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, entity.ErrBadRequest):
		return "bad_request"
	case errors.Is(err, entity.ErrServiceUnavailable):
		return "unavailable"
	case errors.Is(err, entity.ErrTimeout):
		return "timeout"
	case errors.Is(err, entity.ErrNetwork):
		return "network"
	case errors.Is(err, entity.ErrInvalidResponseFormat):
		return "invalid_response"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "other"
	}
}
