package httpclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cbTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func cbTestConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      time.Second,
		FailureRatio: 0.5,
		MinRequests:  3,
	}
}

func noRetryClient() *Client {
	return New(Config{Timeout: 5 * time.Second, MaxRetries: 0, MaxConnsPerHost: 10})
}

// trip drives enough failing requests through cb to open the breaker.
func trip(t *testing.T, cb *CircuitBreakerClient, url string, requests int) {
	t.Helper()
	for i := 0; i < requests; i++ {
		_, _ = cb.Get(context.Background(), url)
	}
}

func TestCircuitBreaker_ClosedOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), cbTestConfig("cb-closed"), cbTestLogger())

	resp, err := cb.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_TripsOnFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), cbTestConfig("cb-trips"), cbTestLogger())
	trip(t, cb, srv.URL, 4)

	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := cbTestConfig("cb-recovers")
	cfg.Timeout = 50 * time.Millisecond
	cb := NewCircuitBreakerClient(noRetryClient(), cfg, cbTestLogger())

	trip(t, cb, srv.URL, 4)
	require.Equal(t, gobreaker.StateOpen, cb.State())

	failing.Store(false)
	time.Sleep(100 * time.Millisecond)

	resp, err := cb.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_4xxNotCountedAsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), cbTestConfig("cb-4xx"), cbTestLogger())

	for i := 0; i < 5; i++ {
		resp, err := cb.Get(context.Background(), srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_Post(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), cbTestConfig("cb-post"), cbTestLogger())

	resp, err := cb.Post(context.Background(), srv.URL, "application/json", strings.NewReader(`{"event":"order.created"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestDefaultCircuitBreakerConfig(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("notifier")

	assert.Equal(t, "notifier", cfg.Name)
	assert.Equal(t, uint32(1), cfg.MaxRequests)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 0.5, cfg.FailureRatio)
	assert.Equal(t, uint32(5), cfg.MinRequests)
}

func TestCircuitBreaker_FallbackInvokedWhenOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), cbTestConfig("cb-fallback"), cbTestLogger())
	trip(t, cb, srv.URL, 4)
	require.Equal(t, gobreaker.StateOpen, cb.State())

	var invoked atomic.Bool
	withFallback := cb.WithFallback(func(ctx context.Context, err error) (*http.Response, error) {
		invoked.Store(true)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"queued":true}`)),
		}, nil
	})

	resp, err := withFallback.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.True(t, invoked.Load())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCircuitBreaker_FallbackNotInvokedWhenClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), cbTestConfig("cb-fb-closed"), cbTestLogger())
	withFallback := cb.WithFallback(func(ctx context.Context, err error) (*http.Response, error) {
		t.Fatal("fallback must not run while the breaker is closed")
		return nil, nil
	})

	resp, err := withFallback.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
}

func TestCircuitBreaker_FallbackErrorPropagated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), cbTestConfig("cb-fb-err"), cbTestLogger())
	trip(t, cb, srv.URL, 4)
	require.Equal(t, gobreaker.StateOpen, cb.State())

	withFallback := cb.WithFallback(func(ctx context.Context, err error) (*http.Response, error) {
		return nil, fmt.Errorf("fallback queue full")
	})

	_, err := withFallback.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback queue full")
}

func TestCircuitBreaker_WithoutFallbackReturnsErrCircuitOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), cbTestConfig("cb-no-fb"), cbTestLogger())
	trip(t, cb, srv.URL, 4)

	_, err := cb.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}
