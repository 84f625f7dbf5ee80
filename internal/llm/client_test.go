package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inboxagent/pkg/circuitbreaker"
	"inboxagent/pkg/config"
	"inboxagent/pkg/trace"
)

func newTestClient(t *testing.T, url string, mutate func(*config.LLMConfig)) *Client {
	t.Helper()
	cfg := config.LLMConfig{APIKey: "test-key", BaseURL: url, Model: "test-model"}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := NewClient(cfg, nil)
	require.NoError(t, err)
	return c
}

func TestNewClient_MissingCredential(t *testing.T) {
	_, err := NewClient(config.LLMConfig{APIKey: "  "}, nil)
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestComplete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, messagesPath, r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, DefaultVersion, r.Header.Get("anthropic-version"))
		assert.Equal(t, "trace-1", r.Header.Get(trace.HeaderName))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, 300, req.MaxTokens)
		assert.InDelta(t, 0.1, req.Temperature, 1e-9)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "classify this", req.Messages[0].Content)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"  Work \n"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	ctx := trace.WithContext(context.Background(), "trace-1")

	got, err := c.Complete(ctx, "classify this", 300, 0.1)
	require.NoError(t, err)
	assert.Equal(t, "Work", got)
}

func TestComplete_EmptyPromptMakesNoCall(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, nil).Complete(context.Background(), "   ", 10, 0)
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestComplete_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, nil).Complete(context.Background(), "hi", 10, 0)
	var ae *AdapterError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusTooManyRequests, ae.StatusCode)
	assert.Contains(t, ae.Error(), "slow down")
}

func TestComplete_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, nil).Complete(context.Background(), "hi", 10, 0)
	var ae *AdapterError
	assert.True(t, errors.As(err, &ae))
}

func TestComplete_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv.URL, func(cfg *config.LLMConfig) { cfg.Timeout = 50 * time.Millisecond })

	_, err := c.Complete(context.Background(), "hi", 10, 0)
	var ae *AdapterError
	require.True(t, errors.As(err, &ae))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestComplete_CircuitOpensAfterFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, func(cfg *config.LLMConfig) {
		cfg.FailureThreshold = 2
		cfg.OpenTimeout = time.Hour
	})

	for i := 0; i < 2; i++ {
		_, err := c.Complete(context.Background(), "hi", 10, 0)
		require.Error(t, err)
	}

	_, err := c.Complete(context.Background(), "hi", 10, 0)
	var ae *AdapterError
	require.True(t, errors.As(err, &ae))
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitBreakerOpen)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestComplete_CallerCancellationDoesNotOpenCircuit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 3 {
			<-r.Context().Done()
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, func(cfg *config.LLMConfig) {
		cfg.FailureThreshold = 2
		cfg.OpenTimeout = time.Hour
	})

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		_, err := c.Complete(ctx, "hi", 10, 0)
		cancel()
		require.Error(t, err)
	}

	text, err := c.Complete(context.Background(), "hi", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, circuitbreaker.StateClosed, c.cb.GetState())
}
