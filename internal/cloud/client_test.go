// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jeranaias/chatbox/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "sk-test-abcdefghijklmnopqrstuvwxyz0123456789"

// newTestServer serves status and body for every request and records the
// last request it saw.
func newTestServer(t *testing.T, status int, body string, seen *ChatRequest, headers *http.Header) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" || r.Method != http.MethodPost {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}
		if headers != nil {
			*headers = r.Header.Clone()
		}
		if seen != nil {
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

const okBody = `{
	"id": "chatcmpl-1",
	"model": "gpt-3.5-turbo",
	"choices": [{
		"message": {"role": "assistant", "content": "hi there"},
		"finish_reason": "stop"
	}]
}`

// =============================================================================
// REQUEST SHAPE
// =============================================================================

func TestComplete_RequestShape(t *testing.T) {
	var seen ChatRequest
	var headers http.Header
	server := newTestServer(t, http.StatusOK, okBody, &seen, &headers)

	client := NewClient(testKey).WithBaseURL(server.URL + "/")
	got, err := client.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", got)

	assert.Equal(t, "gpt-3.5-turbo", seen.Model)
	assert.Equal(t, 0.7, seen.Temperature)
	require.Len(t, seen.Messages, 1, "only the latest user text is sent")
	assert.Equal(t, ChatMessage{Role: "user", Content: "hello"}, seen.Messages[0])

	assert.Equal(t, "Bearer "+testKey, headers.Get("Authorization"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
}

func TestComplete_ZeroTemperatureIsSent(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		w.Write([]byte(okBody))
	}))
	defer server.Close()

	_, err := NewClient(testKey).WithBaseURL(server.URL).WithTemperature(0).Complete(context.Background(), "x")
	require.NoError(t, err)
	assert.Contains(t, raw, "temperature")
}

func TestNewClientFromConfig(t *testing.T) {
	var seen ChatRequest
	server := newTestServer(t, http.StatusOK, okBody, &seen, nil)

	cfg := config.Default().Cloud
	cfg.APIKey = testKey
	cfg.BaseURL = server.URL
	cfg.Model = "gpt-4o-mini"
	cfg.Temperature = 1.1

	client := NewClientFromConfig(cfg)
	_, err := client.Complete(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", seen.Model)
	assert.Equal(t, 1.1, seen.Temperature)
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestComplete_NotConfigured(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	_, err := NewClient("   ").WithBaseURL(server.URL).Complete(context.Background(), "hello")
	assert.True(t, errors.Is(err, ErrNotConfigured))
	assert.Zero(t, hits.Load(), "no request without a key")
}

func TestComplete_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"401 with body", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, ErrAuthFailed},
		{"401 bare", http.StatusUnauthorized, ``, ErrAuthFailed},
		{"404", http.StatusNotFound, `{"error":{"message":"no such model"}}`, ErrModelNotFound},
		{"429", http.StatusTooManyRequests, `slow down`, ErrRateLimited},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := newTestServer(t, tc.status, tc.body, nil, nil)
			_, err := NewClient(testKey).WithBaseURL(server.URL).Complete(context.Background(), "x")
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestComplete_APIError(t *testing.T) {
	server := newTestServer(t, http.StatusInternalServerError,
		`{"error":{"code":"server_error","message":"boom"}}`, nil, nil)

	_, err := NewClient(testKey).WithBaseURL(server.URL).Complete(context.Background(), "x")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 500, apiErr.Status)
	assert.Equal(t, "server_error", apiErr.Code)
	assert.Contains(t, apiErr.Error(), "boom")
}

func TestComplete_NoRetry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(testKey).WithBaseURL(server.URL).Complete(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestComplete_NoChoices(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{"id":"x","choices":[]}`, nil, nil)

	_, err := NewClient(testKey).WithBaseURL(server.URL).Complete(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrNoChoices))
}

func TestComplete_MalformedJSON(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{"choices": [`, nil, nil)

	_, err := NewClient(testKey).WithBaseURL(server.URL).Complete(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
}

func TestComplete_EmptyContentIsNotAnError(t *testing.T) {
	server := newTestServer(t, http.StatusOK,
		`{"choices":[{"message":{"role":"assistant","content":""}}]}`, nil, nil)

	got, err := NewClient(testKey).WithBaseURL(server.URL).Complete(context.Background(), "x")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestComplete_OversizedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("a", MaxResponseSize+10)))
	}))
	defer server.Close()

	_, err := NewClient(testKey).WithBaseURL(server.URL).Complete(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum size")
}

func TestComplete_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := NewClient(testKey).WithBaseURL(server.URL).Complete(ctx, "x")
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

// =============================================================================
// RATE LIMIT
// =============================================================================

func TestComplete_RateLimiterWaitsOnContext(t *testing.T) {
	server := newTestServer(t, http.StatusOK, okBody, nil, nil)
	client := NewClient(testKey).WithBaseURL(server.URL).WithRateLimit(1)

	_, err := client.Complete(context.Background(), "first")
	require.NoError(t, err)

	// the second call would wait a minute; the deadline cuts it short
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Complete(ctx, "second")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func TestAPIKeyMasked(t *testing.T) {
	client := NewClient(testKey)
	masked := client.APIKeyMasked()
	assert.NotContains(t, masked, "sk-test")
	assert.Contains(t, masked, client.KeyFingerprint())
	assert.Len(t, client.KeyFingerprint(), 8)

	assert.Equal(t, "[not set]", NewClient("").APIKeyMasked())
	assert.False(t, NewClient("").IsConfigured())
}
