package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/infra/llm"
	"blog-summarizer/internal/prompt"
	usecase "blog-summarizer/internal/usecase/summarize"
)

/* ───────── test doubles ───────── */

type fakeSummarizer struct {
	got    entity.RawInput
	calls  int
	result *entity.AggregateResult
	err    error
}

func (f *fakeSummarizer) Process(_ context.Context, in entity.RawInput) (*entity.AggregateResult, error) {
	f.calls++
	f.got = in
	return f.result, f.err
}

type envelope struct {
	Success bool `json:"success"`
	Data    DTO  `json:"data"`
	Error   struct {
		Message string          `json:"message"`
		Status  int             `json:"status"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

const validText = "Go makes it easy to build simple, reliable and efficient software at any scale."

func newHandler(svc Summarizer) Handler {
	return Handler{Svc: svc, MinLength: 50, MaxLength: 15000, Model: "llama-3.3-70b"}
}

func post(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func body(fields map[string]any) string {
	b, _ := json.Marshal(fields)
	return string(b)
}

func sampleResult() *entity.AggregateResult {
	return &entity.AggregateResult{
		SummaryResult: entity.SummaryResult{
			Summary: entity.Summary{
				Bullets: []string{"First point here", "Second point here", "Third point here"},
				TLDR:    "A short synthesis.",
			},
			TokensUsed: 321,
			Model:      "llama-3.3-70b",
		},
		Length:          entity.LengthShort,
		ProcessingTime:  1234 * time.Millisecond,
		OriginalLength:  81,
		CleanedLength:   80,
		ChunksProcessed: 1,
	}
}

/* ───────── success ───────── */

func TestHandler_Success(t *testing.T) {
	svc := &fakeSummarizer{result: sampleResult()}

	rec, env := post(t, newHandler(svc), body(map[string]any{"text": validText, "length": "short", "extra": true}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, entity.RawInput{Text: validText, Length: entity.LengthShort}, svc.got)
	assert.Equal(t, []string{"First point here", "Second point here", "Third point here"}, env.Data.Bullets)
	assert.Equal(t, "A short synthesis.", env.Data.TLDR)

	m := env.Data.Meta
	assert.EqualValues(t, 321, m.TokensUsed)
	assert.Equal(t, "llama-3.3-70b", m.Model)
	assert.Equal(t, "short", m.Length)
	assert.Equal(t, "1234ms", m.ProcessingTime)
	assert.Equal(t, 81, m.OriginalLength)
	assert.Equal(t, 80, m.CleanedLength)
	assert.Equal(t, 1, m.ChunksProcessed)
	assert.False(t, m.Fallback)
	assert.False(t, m.Cached)
}

func TestHandler_DefaultsAndFlags(t *testing.T) {
	result := sampleResult()
	result.TokensUsed = 0
	result.Model = ""
	result.Fallback = true
	result.Cached = true
	svc := &fakeSummarizer{result: result}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(body(map[string]any{"text": validText})))
	newHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.LengthMedium, svc.got.Length)
	assert.False(t, svc.got.HTML)

	var raw struct {
		Data struct {
			Meta map[string]any `json:"meta"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	meta := raw.Data.Meta
	assert.Equal(t, "unknown", meta["tokensUsed"])
	assert.Equal(t, "llama-3.3-70b", meta["model"])
	assert.Equal(t, true, meta["fallback"])
	assert.Equal(t, true, meta["cached"])
}

func TestHandler_HTMLFormat(t *testing.T) {
	svc := &fakeSummarizer{result: sampleResult()}
	html := "<article><p>" + validText + "</p></article>"

	rec, _ := post(t, newHandler(svc), body(map[string]any{"text": html, "format": "html"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.got.HTML)
}

/* ───────── request validation ───────── */

func TestHandler_RequestValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []entity.FieldError
	}{
		{
			name: "missing text",
			body: `{}`,
			want: []entity.FieldError{{Field: "text", Message: "Text is required"}},
		},
		{
			name: "empty text",
			body: `{"text":""}`,
			want: []entity.FieldError{{Field: "text", Message: "Text is required"}},
		},
		{
			name: "text not a string",
			body: `{"text":42}`,
			want: []entity.FieldError{{Field: "text", Message: "Text must be a string"}},
		},
		{
			name: "too short",
			body: body(map[string]any{"text": strings.Repeat("a", 49)}),
			want: []entity.FieldError{{Field: "text", Message: "Text must be at least 50 characters long"}},
		},
		{
			name: "too long",
			body: body(map[string]any{"text": strings.Repeat("a", 15001)}),
			want: []entity.FieldError{{Field: "text", Message: "Text must be no more than 15,000 characters long"}},
		},
		{
			name: "bad length and format reported together",
			body: body(map[string]any{"text": validText, "length": "huge", "format": "pdf"}),
			want: []entity.FieldError{
				{Field: "length", Message: "Length must be one of: short, medium, long"},
				{Field: "format", Message: "Format must be one of: text, html"},
			},
		},
		{
			name: "every field invalid",
			body: `{"length":7}`,
			want: []entity.FieldError{
				{Field: "text", Message: "Text is required"},
				{Field: "length", Message: "Length must be one of: short, medium, long"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeSummarizer{result: sampleResult()}

			rec, env := post(t, newHandler(svc), tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Validation failed", env.Error.Message)
			var details []entity.FieldError
			require.NoError(t, json.Unmarshal(env.Error.Details, &details))
			assert.Equal(t, tt.want, details)
			assert.Zero(t, svc.calls)
		})
	}
}

func TestHandler_MultibyteLength(t *testing.T) {
	svc := &fakeSummarizer{result: sampleResult()}

	rec, _ := post(t, newHandler(svc), body(map[string]any{"text": strings.Repeat("語", 50)}))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_InvalidJSON(t *testing.T) {
	rec, env := post(t, newHandler(&fakeSummarizer{}), `{"text":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON body", env.Error.Message)
}

func TestHandler_BodyTooLarge(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 16)
		newHandler(&fakeSummarizer{}).ServeHTTP(w, r)
	})

	rec, env := post(t, h, body(map[string]any{"text": validText}))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "Request body too large", env.Error.Message)
}

/* ───────── error mapping ───────── */

func TestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", &entity.ValidationError{Errors: []string{"Text must contain meaningful content"}}, 400, "Text validation failed"},
		{"invalid input", entity.ErrInvalidInput, 400, "Invalid input"},
		{"authentication", fmt.Errorf("%w: cerebras: bad key", entity.ErrAuthentication), 401, "Authentication failed"},
		{"rate limited", fmt.Errorf("%w: cerebras", entity.ErrRateLimited), 429, "Too many requests"},
		{"upstream timeout", fmt.Errorf("%w: cerebras", entity.ErrTimeout), 408, "Request timeout"},
		{"pipeline deadline", fmt.Errorf("chunk 2: %w", context.DeadlineExceeded), 408, "Request timeout"},
		{"unavailable", fmt.Errorf("%w: circuit open", entity.ErrServiceUnavailable), 502, "External service unavailable"},
		{"network", fmt.Errorf("%w: connection refused", entity.ErrNetwork), 502, "External service unavailable"},
		{"chunk parse failure", &entity.ChunkError{Index: 1, Err: entity.ErrInsufficientBullets}, 500, "Internal server error"},
		{"unknown", errors.New("boom"), 500, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeSummarizer{err: tt.err}

			rec, env := post(t, newHandler(svc), body(map[string]any{"text": validText}))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantStatus, env.Error.Status)
			assert.Equal(t, tt.wantMsg, env.Error.Message)
		})
	}
}

func TestHandler_ValidationErrorDetails(t *testing.T) {
	svc := &fakeSummarizer{err: &entity.ValidationError{Errors: []string{"Text must be at least 50 characters long"}}}

	_, env := post(t, newHandler(svc), body(map[string]any{"text": validText}))

	var details []string
	require.NoError(t, json.Unmarshal(env.Error.Details, &details))
	assert.Equal(t, []string{"Text must be at least 50 characters long"}, details)
}

/* ───────── register ───────── */

func TestRegister_AppliesMiddlewareInOrder(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	mux := http.NewServeMux()
	Register(mux, newHandler(&fakeSummarizer{result: sampleResult()}), mw("outer"), mw("inner"))

	rec, _ := post(t, mux, body(map[string]any{"text": validText}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"outer", "inner"}, order)

	get := httptest.NewRecorder()
	mux.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/api/summarize", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, get.Code)
}

/* ───────── end to end with the offline provider ───────── */

func TestHandler_WithStubProvider(t *testing.T) {
	svc := usecase.NewService(llm.NewStub("stub-model"), prompt.NewBuilder(entity.DefaultLengthProfiles()),
		usecase.Config{MinLength: 50, MaxLength: 15000, ChunkSize: 2000, Model: "stub-model"})
	doc := "Go is an open source programming language. It makes it simple to build secure software. " +
		"Goroutines make concurrency approachable for every team. The standard library covers most needs."

	rec, env := post(t, newHandler(svc), body(map[string]any{"text": doc, "length": "short"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.GreaterOrEqual(t, len(env.Data.Bullets), entity.MinBullets)
	assert.LessOrEqual(t, len(env.Data.Bullets), entity.MaxBullets)
	assert.NotEmpty(t, env.Data.TLDR)
	assert.Equal(t, "stub-model", env.Data.Meta.Model)
	assert.Equal(t, "short", env.Data.Meta.Length)
	assert.Equal(t, 1, env.Data.Meta.ChunksProcessed)
	assert.Equal(t, len([]rune(doc)), env.Data.Meta.OriginalLength)
	assert.True(t, strings.HasSuffix(env.Data.Meta.ProcessingTime, "ms"))
}
