package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/handler/http/respond"
	"blog-summarizer/internal/observability/logging"
)

// Summarizer runs the pipeline for one request.
type Summarizer interface {
	Process(ctx context.Context, in entity.RawInput) (*entity.AggregateResult, error)
}

// Handler serves POST /api/summarize.
type Handler struct {
	Svc       Summarizer
	MinLength int
	MaxLength int
	// Model is reported when a result does not name one.
	Model string
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.SafeError(w, r, respond.NewAppError(http.StatusRequestEntityTooLarge, "Request body too large", err))
			return
		}
		respond.SafeError(w, r, respond.NewAppError(http.StatusBadRequest, "Invalid JSON body", err))
		return
	}

	in, fieldErrs := validate(req, h.MinLength, h.MaxLength)
	if len(fieldErrs) > 0 {
		respond.Failure(w, r, http.StatusBadRequest, "Validation failed", fieldErrs)
		return
	}

	logging.FromContext(r.Context()).Info("summarization request received",
		"text_length", len(in.Text),
		"summary_length", string(in.Length),
		"format", in.Format)

	result, err := h.Svc.Process(r.Context(), entity.RawInput{
		Text:   in.Text,
		Length: in.Length,
		HTML:   in.Format == FormatHTML,
	})
	if err != nil {
		respond.SafeError(w, r, toAppError(err))
		return
	}

	respond.Success(w, http.StatusOK, toDTO(result, h.Model))
}

// toAppError maps pipeline and upstream errors to their HTTP status.
func toAppError(err error) *respond.AppError {
	var ve *entity.ValidationError
	switch {
	case errors.As(err, &ve):
		appErr := respond.NewAppError(http.StatusBadRequest, "Text validation failed", err)
		appErr.Details = ve.Errors
		return appErr
	case errors.Is(err, entity.ErrInvalidInput), errors.Is(err, entity.ErrUnknownLengthProfile):
		return respond.NewAppError(http.StatusBadRequest, "Invalid input", err)
	case errors.Is(err, entity.ErrAuthentication):
		return respond.NewAppError(http.StatusUnauthorized, "Authentication failed", err)
	case errors.Is(err, entity.ErrRateLimited):
		return respond.NewAppError(http.StatusTooManyRequests, "Too many requests", err)
	case errors.Is(err, entity.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return respond.NewAppError(http.StatusRequestTimeout, "Request timeout", err)
	case errors.Is(err, entity.ErrServiceUnavailable), errors.Is(err, entity.ErrNetwork):
		return respond.NewAppError(http.StatusBadGateway, "External service unavailable", err)
	default:
		return respond.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
}
