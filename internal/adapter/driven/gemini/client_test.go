package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/postpilot/internal/adapter/driven/gemini"
	"github.com/ericfisherdev/postpilot/internal/domain/port/driven"
)

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) *gemini.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return gemini.NewClient(server.Client(), server.URL, "test-key", "gemini-test")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGenerate_Success(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		contents := body["contents"].([]any)
		parts := contents[0].(map[string]any)["parts"].([]any)
		assert.Equal(t, "write a post", parts[0].(map[string]any)["text"])
		cfg := body["generationConfig"].(map[string]any)
		assert.Equal(t, 2000.0, cfg["maxOutputTokens"])
		assert.Equal(t, 0.8, cfg["temperature"])

		writeJSON(w, http.StatusOK, map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"role": "model",
						"parts": []any{
							map[string]any{"text": "planning the hook", "thought": true},
							map[string]any{"text": "\n  Most meetings should be emails.\n\n"},
							map[string]any{"text": "Agree?  "},
						},
					},
					"finishReason": "STOP",
				},
				map[string]any{
					"content": map[string]any{"parts": []any{map[string]any{"text": "second candidate"}}},
				},
			},
		})
	})

	client := newTestClient(t, handler)
	got, err := client.Generate(context.Background(), "write a post")

	require.NoError(t, err)
	assert.Equal(t, "Most meetings should be emails.\n\nAgree?", got)
}

func TestGenerate_ProviderErrorPayload(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{
				"code":    400,
				"message": "API key not valid. Please pass a valid API key.",
				"status":  "INVALID_ARGUMENT",
			},
		})
	})

	client := newTestClient(t, handler)
	_, err := client.Generate(context.Background(), "prompt")

	var pe *driven.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "gemini", pe.Provider)
	assert.Equal(t, http.StatusBadRequest, pe.StatusCode)
	assert.Equal(t, "INVALID_ARGUMENT", pe.Code)
	assert.Equal(t, "API key not valid. Please pass a valid API key.", pe.Message)
}

func TestGenerate_MalformedResponses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "not json", status: http.StatusOK, body: "<html>bad gateway</html>"},
		{name: "no candidates", status: http.StatusOK, body: `{"candidates":[]}`},
		{name: "candidate without content", status: http.StatusOK, body: `{"candidates":[{"finishReason":"MAX_TOKENS"}]}`},
		{name: "empty text", status: http.StatusOK, body: `{"candidates":[{"content":{"parts":[{"text":"   "}]}}]}`},
		{name: "non-200 without error payload", status: http.StatusBadGateway, body: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			client := newTestClient(t, handler)
			_, err := client.Generate(context.Background(), "prompt")

			require.ErrorIs(t, err, driven.ErrMalformedResponse)
		})
	}
}

func TestGenerate_BlockedPrompt(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"promptFeedback": map[string]any{"blockReason": "SAFETY"},
		})
	})

	client := newTestClient(t, handler)
	_, err := client.Generate(context.Background(), "prompt")

	var pe *driven.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "SAFETY", pe.Code)
}

func TestGenerate_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := server.URL
	server.Close()

	client := gemini.NewClient(&http.Client{Timeout: time.Second}, url, "test-key", "")
	_, err := client.Generate(context.Background(), "prompt")

	require.ErrorIs(t, err, driven.ErrProviderUnavailable)
}

func TestGenerate_Timeout(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := gemini.NewClient(&http.Client{Timeout: 50 * time.Millisecond}, server.URL, "test-key", "")
	_, err := client.Generate(context.Background(), "prompt")

	require.ErrorIs(t, err, driven.ErrProviderUnavailable)
}

func TestGenerate_MissingAPIKey(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { called = true })
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := gemini.NewClient(server.Client(), server.URL, "", "")
	_, err := client.Generate(context.Background(), "prompt")

	var pe *driven.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.False(t, called)
}
