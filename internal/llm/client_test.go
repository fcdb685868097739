package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelflift/internal/config"
	"shelflift/internal/observability"
	"shelflift/internal/types"
)

func clientConfig(provider, endpoint string) config.LLMConfig {
	return config.LLMConfig{
		Provider:       provider,
		Endpoint:       endpoint,
		Model:          "test-model",
		MaxTokens:      64,
		RequestTimeout: 5 * time.Second,
	}
}

func TestClientGenerateCustomProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte("  A crisp tagline.  "))
	}))
	defer srv.Close()

	metrics := observability.NewMetrics(testLogger())
	c := NewClient(clientConfig("custom", srv.URL), metrics, testLogger())

	out, err := c.Generate(context.Background(), "Write a tagline.", "")
	require.NoError(t, err)
	assert.Equal(t, "A crisp tagline.", out)
	assert.Equal(t, int64(1), metrics.GenerationCalls.Load())
	assert.Equal(t, int64(0), metrics.GenerationFailures.Load())
}

func TestClientGenerateOpenAIProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var payload struct {
			Messages []map[string]string `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Messages, 2)
		assert.Equal(t, "system", payload.Messages[0]["role"])

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "A summary."}},
			},
		})
	}))
	defer srv.Close()

	cfg := clientConfig("openai", srv.URL)
	cfg.APIKey = "sk-test"
	c := NewClient(cfg, nil, testLogger())

	out, err := c.Generate(context.Background(), "Summarize.", "You write copy.")
	require.NoError(t, err)
	assert.Equal(t, "A summary.", out)
}

func TestClientGenerateFailureCountsAsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	metrics := observability.NewMetrics(testLogger())
	c := NewClient(clientConfig("custom", srv.URL), metrics, testLogger())

	_, err := c.Generate(context.Background(), "Write a tagline.", "")
	require.Error(t, err)
	assert.Equal(t, int64(1), metrics.GenerationCalls.Load())
	assert.Equal(t, int64(1), metrics.GenerationFailures.Load())
}

func TestClientGenerateEmptyPromptNotCounted(t *testing.T) {
	metrics := observability.NewMetrics(testLogger())
	c := NewClient(clientConfig("custom", "http://127.0.0.1:0"), metrics, testLogger())

	_, err := c.Generate(context.Background(), "   ", "")
	assert.ErrorIs(t, err, types.ErrEmptyPrompt)
	assert.Equal(t, int64(0), metrics.GenerationCalls.Load())
}

func TestClientGenerateUnsupportedProvider(t *testing.T) {
	metrics := observability.NewMetrics(testLogger())
	c := NewClient(clientConfig("bard", ""), metrics, testLogger())

	_, err := c.Generate(context.Background(), "Hello.", "")
	require.Error(t, err)
	assert.Equal(t, int64(1), metrics.GenerationFailures.Load())
}
