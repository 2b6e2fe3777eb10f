package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicChatLiftsSystemMessages(t *testing.T) {
	var gotBody map[string]any
	var gotKey, gotVersion string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		assert.Equal(t, "/v1/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"content": []any{
				map[string]any{"type": "text", "text": "sure"},
			},
			"usage": map[string]any{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	defer srv.Close()

	c, err := NewAnthropicClient(AnthropicConfig{
		APIKey:  "ak-test",
		Model:   "claude-3-5-sonnet-latest",
		BaseURL: srv.URL,
		Retry:   fastRetry(),
	})
	require.NoError(t, err)

	resp, err := c.Chat(context.Background(), []Message{
		{Role: RoleSystem, Content: "you are terse"},
		{Role: RoleUser, Content: "hello"},
	})
	require.NoError(t, err)

	assert.Equal(t, "ak-test", gotKey)
	assert.Equal(t, anthropicVersion, gotVersion)

	// System text travels as a top-level field, not a message.
	assert.Equal(t, "you are terse", gotBody["system"])
	messages := gotBody["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])

	assert.Equal(t, "sure", resp.Content)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestAnthropicNormalize(t *testing.T) {
	r := &anthropicResponse{
		Content: []anthropicBlock{
			{Type: "text", Text: "part one "},
			{Type: "tool_use", ID: "t1", Name: "create", Input: map[string]any{"path": "x"}},
			{Type: "text", Text: "part two"},
			{Type: "thinking"},
		},
		Usage: anthropicUsage{InputTokens: 3, OutputTokens: 4},
	}

	resp := r.normalize()
	assert.Equal(t, "part one part two", resp.Content)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "create", resp.ToolCalls[0].Name)
	assert.Equal(t, "x", resp.ToolCalls[0].Args["path"])
	assert.Equal(t, 7, resp.Usage.TotalTokens)
}

func TestAnthropicErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"max_tokens required"}`))
	}))
	defer srv.Close()

	c, err := NewAnthropicClient(AnthropicConfig{APIKey: "k", Model: "m", BaseURL: srv.URL, Retry: fastRetry()})
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "max_tokens")
}

func TestNewAnthropicClientValidation(t *testing.T) {
	_, err := NewAnthropicClient(AnthropicConfig{Model: "m"})
	require.Error(t, err)

	_, err = NewAnthropicClient(AnthropicConfig{APIKey: "k"})
	require.Error(t, err)

	c, err := NewAnthropicClient(AnthropicConfig{APIKey: "k", Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.anthropic.com", c.config.BaseURL)
}
