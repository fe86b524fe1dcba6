package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/trunk/internal/core"
)

func TestChatParsesFinishReasonAndUsage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "test-model", payload["model"])
		assert.NotContains(t, payload, "tools")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{
				"message": {"role": "assistant", "content": "hello"},
				"finish_reason": "stop"
			}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	provider := NewOpenAICompatible(OpenAICompatibleConfig{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Model:      "test-model",
		AuthHeader: "Authorization",
		AuthPrefix: "Bearer ",
	})

	resp, err := provider.Chat(context.Background(), []core.Message{{Role: core.RoleUser, Content: "hi"}}, nil)

	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Message.Content)
	assert.Equal(t, core.FinishStop, resp.FinishReason)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestChatToolCallsReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Contains(t, payload, "tools")

		w.Write([]byte(`{
			"choices": [{
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{"id": "call-1", "type": "function", "function": {"name": "fetch_url", "arguments": "{}"}}]
				},
				"finish_reason": "tool_calls"
			}]
		}`))
	}))
	defer server.Close()

	provider := NewOpenAICompatible(OpenAICompatibleConfig{BaseURL: server.URL, Model: "m"})

	tools := []core.Tool{{Type: "function", Function: core.Function{Name: "fetch_url", Parameters: json.RawMessage(`{}`)}}}
	resp, err := provider.Chat(context.Background(), nil, tools)

	require.NoError(t, err)
	assert.Equal(t, core.FinishToolCalls, resp.FinishReason)
	require.Len(t, resp.Message.ToolCalls, 1)
	assert.Equal(t, "fetch_url", resp.Message.ToolCalls[0].Function.Name)
	assert.Nil(t, resp.Usage)
}

func TestChatHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := NewOpenAICompatible(OpenAICompatibleConfig{BaseURL: server.URL, Model: "m"})

	_, err := provider.Chat(context.Background(), nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 429")
}
