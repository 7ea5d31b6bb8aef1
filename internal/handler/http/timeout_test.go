package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-summarizer/internal/handler/http/requestid"
	"blog-summarizer/internal/handler/http/respond"
)

func serveWithTimeout(h http.Handler, d time.Duration, requestID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/summarize", nil)
	if requestID != "" {
		req = req.WithContext(requestid.WithRequestID(req.Context(), requestID))
	}
	rec := httptest.NewRecorder()
	Timeout(d)(h).ServeHTTP(rec, req)
	return rec
}

func decodeFailure(t *testing.T, rec *httptest.ResponseRecorder) respond.ErrorBody {
	t.Helper()
	var env respond.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	return *env.Error
}

/* ───────── handler finishes first ───────── */

func TestTimeout_HandlerResponseCommitsHeaders(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline := r.Context().Deadline()
		assert.True(t, hasDeadline)
		respond.Success(w, http.StatusOK, map[string]string{"tldr": "done"})
	})

	rec := serveWithTimeout(handler, time.Second, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"tldr":"done"}}`, rec.Body.String())
}

func TestTimeout_HeadersNotCommittedUntilWrite(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pipeline", "chunked")
		<-r.Context().Done()
	})

	rec := serveWithTimeout(handler, 10*time.Millisecond, "")

	assert.Equal(t, http.StatusRequestTimeout, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Pipeline"))
}

/* ───────── deadline fires first ───────── */

func TestTimeout_EnvelopeCarriesRequestID(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	rec := serveWithTimeout(handler, 10*time.Millisecond, "req-timeout")

	require.Equal(t, http.StatusRequestTimeout, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeFailure(t, rec)
	assert.Equal(t, "Request timeout", body.Message)
	assert.Equal(t, http.StatusRequestTimeout, body.Status)
	assert.Equal(t, "req-timeout", body.RequestID)
}

func TestTimeout_LateWriteDropped(t *testing.T) {
	lateErr := make(chan error, 1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		time.Sleep(5 * time.Millisecond)
		_, err := w.Write([]byte(`{"success":true}`))
		lateErr <- err
	})

	rec := serveWithTimeout(handler, 5*time.Millisecond, "")

	assert.Equal(t, http.StatusRequestTimeout, rec.Code)
	select {
	case err := <-lateErr:
		assert.ErrorIs(t, err, http.ErrHandlerTimeout)
	case <-time.After(time.Second):
		t.Fatal("handler never attempted its late write")
	}
	assert.Equal(t, "Request timeout", decodeFailure(t, rec).Message)
}

// The handler reacts to cancellation by writing its own error envelope while
// the middleware writes the timeout envelope. Run with -race.
func TestTimeout_ConcurrentErrorEnvelopes(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		respond.Failure(w, r, http.StatusRequestTimeout, "Request timeout", nil)
	})

	for i := 0; i < 200; i++ {
		rec := serveWithTimeout(handler, time.Millisecond, "req-race")

		require.Equal(t, http.StatusRequestTimeout, rec.Code)
		body := decodeFailure(t, rec)
		assert.Equal(t, "req-race", body.RequestID)
	}
}

/* ───────── panics ───────── */

func TestTimeout_PanicReachesCaller(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	assert.PanicsWithValue(t, "boom", func() {
		serveWithTimeout(handler, time.Second, "")
	})
}

func TestTimeout_PanicAfterCommitReachesCaller(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		<-r.Context().Done()
		panic("late boom")
	})

	assert.PanicsWithValue(t, "late boom", func() {
		serveWithTimeout(handler, 5*time.Millisecond, "")
	})
}
