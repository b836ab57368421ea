package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/metrics"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc, breaker bool) LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	llm, err := NewGeminiService(context.Background(), config.GeminiConfig{
		APIKey:              "test-key",
		Model:               "gemini-test",
		BaseURL:             srv.URL,
		Timeout:             5 * time.Second,
		BreakerEnabled:      breaker,
		BreakerMinRequests:  2,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  time.Minute,
	}, metrics.NewRecorder("test"))
	require.NoError(t, err)
	return llm
}

func TestGeminiGenerateJSON(t *testing.T) {
	llm := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "{\"summary\": \"ok\"}"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 4}
		}`))
	}, false)

	text, err := llm.GenerateJSON(context.Background(), GenerateRequest{
		Operation: "red_flags",
		Prompt:    Prompt{System: "system", User: "user"},
		Schema:    redFlagsSchema,
	})
	require.NoError(t, err)
	require.Equal(t, `{"summary": "ok"}`, text)
}

func TestGeminiAuthFailure(t *testing.T) {
	llm := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"code": 401, "message": "API key not valid", "status": "UNAUTHENTICATED"}}`))
	}, false)

	_, err := llm.GenerateJSON(context.Background(), GenerateRequest{Operation: "screen", Prompt: Prompt{User: "u"}})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrProviderAuth), "got %v", err)
}

func TestGeminiEmptyReply(t *testing.T) {
	llm := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}, false)

	_, err := llm.GenerateJSON(context.Background(), GenerateRequest{Operation: "screen", Prompt: Prompt{User: "u"}})
	require.True(t, errors.Is(err, ErrProvider))
}

func TestGeminiBreakerOpensWithoutRetrying(t *testing.T) {
	var hits atomic.Int32
	llm := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "bad request", "status": "INVALID_ARGUMENT"}}`))
	}, true)

	req := GenerateRequest{Operation: "screen", Prompt: Prompt{User: "u"}}
	for i := 0; i < 2; i++ {
		_, err := llm.GenerateJSON(context.Background(), req)
		require.True(t, errors.Is(err, ErrProvider))
	}
	require.Equal(t, int32(2), hits.Load(), "each call reaches the provider exactly once")

	_, err := llm.GenerateJSON(context.Background(), req)
	require.True(t, errors.Is(err, ErrProvider))
	require.Contains(t, err.Error(), "temporarily unavailable")
	require.Equal(t, int32(2), hits.Load())
}

func TestNewGeminiServiceRequiresKey(t *testing.T) {
	_, err := NewGeminiService(context.Background(), config.GeminiConfig{}, nil)
	require.Error(t, err)
}
