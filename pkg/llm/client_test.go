package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-assistant-go/internal/config"
)

func streamServer(t *testing.T, chunks ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, c := range chunks {
			payload, _ := json.Marshal(map[string]any{
				"choices": []map[string]any{{"delta": map[string]string{"content": c}}},
			})
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func TestCompatibleGenerateAccumulatesChunks(t *testing.T) {
	srv := streamServer(t, "Hel", "lo", " world")
	defer srv.Close()

	c := NewCompatibleClient(config.LLMConfig{BaseURL: srv.URL, Model: "m"})
	out, err := c.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", out)
}

func TestCompatibleGenerationParamsFromConfig(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n\ndata: [DONE]\n\n")
	}))
	defer srv.Close()

	c := NewCompatibleClient(config.LLMConfig{
		BaseURL:    srv.URL,
		Model:      "m",
		Generation: config.LLMGenerationConfig{Temperature: 0.7, MaxTokens: 256},
	})
	_, err := c.Generate(context.Background(), "hi")
	require.NoError(t, err)

	require.NotNil(t, got.Temperature)
	assert.Equal(t, 0.7, *got.Temperature)
	require.NotNil(t, got.MaxTokens)
	assert.Equal(t, 256, *got.MaxTokens)
	assert.Nil(t, got.TopP)
}

func TestCompatibleGenerateEmpty(t *testing.T) {
	srv := streamServer(t)
	defer srv.Close()

	c := NewCompatibleClient(config.LLMConfig{BaseURL: srv.URL, Model: "m"})
	_, err := c.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestCompatibleGenerateNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewCompatibleClient(config.LLMConfig{BaseURL: srv.URL, Model: "m"})
	_, err := c.Generate(context.Background(), "hi")
	assert.Error(t, err)
}

func TestNewClientProviders(t *testing.T) {
	for _, p := range []string{"", "openai-compatible", "openai", "anthropic"} {
		c, err := NewClient(config.LLMConfig{Provider: p, APIKey: "k", Model: "m"})
		require.NoError(t, err, p)
		assert.NotNil(t, c)
	}
	_, err := NewClient(config.LLMConfig{Provider: "bard"})
	assert.Error(t, err)
}
