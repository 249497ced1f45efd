package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"prognosis/pkg/requestcontext"
)

type brokenStore struct{}

func (brokenStore) Allow(context.Context, string, int, time.Duration) (*Result, error) {
	return nil, errors.New("connection refused")
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("rejects over budget with retry hint", func(t *testing.T) {
		h := New(NewMemoryStore(), 1, time.Minute, nil).Middleware(okHandler())

		first := httptest.NewRecorder()
		h.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/assessments", nil))
		assert.Equal(t, http.StatusNoContent, first.Code)
		assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))

		second := httptest.NewRecorder()
		h.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/assessments", nil))
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
		assert.NotEmpty(t, second.Header().Get("Retry-After"))
		assert.Contains(t, second.Body.String(), "rate_limit_exceeded")
	})

	t.Run("budgets authenticated clinicians separately", func(t *testing.T) {
		h := New(NewMemoryStore(), 1, time.Minute, nil).Middleware(okHandler())

		for _, sub := range []string{"dr-a", "dr-b"} {
			req := httptest.NewRequest(http.MethodGet, "/api/schema", nil)
			req = req.WithContext(requestcontext.WithSubject(req.Context(), sub))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusNoContent, rec.Code, sub)
		}
	})

	t.Run("store failure lets the request through", func(t *testing.T) {
		h := New(brokenStore{}, 1, time.Minute, nil).Middleware(okHandler())

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schema", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestCallerKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:51234"
	assert.Equal(t, "ip:192.0.2.7", callerKey(req))

	req = req.WithContext(requestcontext.WithSubject(req.Context(), "dr-a"))
	assert.Equal(t, "subject:dr-a", callerKey(req))
}
