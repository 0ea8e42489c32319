package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopmesh/storefront/config"
	"github.com/shopmesh/storefront/internal/kv"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRateLimit_AllowsUpToMax(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Window: time.Minute, Max: 3}
	handler := RateLimit(kv.NewMemoryStore(), cfg, discardLogger())(okHandler())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d within the window must pass, got %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("request beyond the window max must get 429, got %d", rec.Code)
	}
}

func TestRateLimit_SeparateCountersPerClient(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Window: time.Minute, Max: 1}
	handler := RateLimit(kv.NewMemoryStore(), cfg, discardLogger())(okHandler())

	first := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
	first.RemoteAddr = "203.0.113.9:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("first client must pass, got %d", rec.Code)
	}

	other := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
	other.RemoteAddr = "198.51.100.7:4321"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("a different client has its own window, got %d", rec.Code)
	}
}

func TestRateLimit_DisabledPassesThrough(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: false, Window: time.Minute, Max: 0}
	handler := RateLimit(kv.NewMemoryStore(), cfg, discardLogger())(okHandler())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("disabled limiter must never block, got %d", rec.Code)
		}
	}
}

// brokenStore fails every counter operation.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error)   { return nil, errors.New("down") }
func (brokenStore) Set(context.Context, string, []byte) error     { return errors.New("down") }
func (brokenStore) Delete(context.Context, string) error          { return errors.New("down") }
func (brokenStore) GetByPrefix(context.Context, string) ([]kv.Entry, error) {
	return nil, errors.New("down")
}
func (brokenStore) Incr(context.Context, string, time.Duration) (int, error) {
	return 0, errors.New("down")
}

func TestRateLimit_FailsOpenOnStoreError(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Window: time.Minute, Max: 1}
	handler := RateLimit(brokenStore{}, cfg, discardLogger())(okHandler())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/signin", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("a broken store must fail open, got %d", rec.Code)
		}
	}
}
