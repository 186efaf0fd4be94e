package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/student-service/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAIService_Chat(t *testing.T) {
	var got chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" Review recursion first. "}}]}`))
	}))
	defer server.Close()

	svc := NewAIService(config.AIConfig{APIKey: "key", BaseURL: server.URL + "/"}, discardLogger())

	resp, err := svc.Chat(context.Background(), &ChatRequest{Message: "  How do I study algorithms?  ", SessionID: ptr("s-1")})
	require.NoError(t, err)
	assert.Equal(t, "Review recursion first.", resp.Response)
	assert.Equal(t, "s-1", resp.SessionID)

	assert.Equal(t, defaultAIModel, got.Model)
	assert.Equal(t, aiMaxTokens, got.MaxTokens)
	assert.Equal(t, aiTemperature, got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "How do I study algorithms?", got.Messages[1].Content)
}

func TestAIService_Fallbacks(t *testing.T) {
	ctx := context.Background()

	unconfigured := NewAIService(config.AIConfig{}, discardLogger())
	resp, err := unconfigured.Chat(ctx, &ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, aiUnavailableReply, resp.Response)
	assert.Len(t, resp.SessionID, 36, "a session id is generated")

	health := unconfigured.Health(ctx)
	assert.False(t, health.Available)
	assert.Equal(t, "unavailable", health.Status)

	_, err = unconfigured.Chat(ctx, &ChatRequest{Message: "   "})
	requireKind(t, err, KindValidation, "Message must not be empty")

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer failing.Close()

	svc := NewAIService(config.AIConfig{APIKey: "key", BaseURL: failing.URL}, discardLogger())
	resp, err = svc.Chat(ctx, &ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, aiFailureReply, resp.Response)

	health = svc.Health(ctx)
	assert.True(t, health.Available)
	assert.Equal(t, "healthy", health.Status)

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer slow.Close()

	svc = NewAIService(config.AIConfig{APIKey: "key", BaseURL: slow.URL, Timeout: 20 * time.Millisecond}, discardLogger())
	resp, err = svc.Chat(ctx, &ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, aiFailureReply, resp.Response)
}
