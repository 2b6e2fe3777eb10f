package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIConfig holds configuration for the OpenAI chat completions API.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string // Default: "https://api.openai.com"
	Model       string
	MaxTokens   int32
	Temperature float32
	HTTPTimeout time.Duration
	Retry       RetryConfig
}

// OpenAIClient implements Client for OpenAI-compatible endpoints.
type OpenAIClient struct {
	config     OpenAIConfig
	httpClient *http.Client
}

// NewOpenAIClient creates a new OpenAI chat completions client.
func NewOpenAIClient(config OpenAIConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com"
	}
	if !strings.HasPrefix(config.BaseURL, "http://") && !strings.HasPrefix(config.BaseURL, "https://") {
		return nil, fmt.Errorf("invalid BaseURL: must start with http:// or https://")
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 4096
	}
	if config.HTTPTimeout == 0 {
		config.HTTPTimeout = 120 * time.Second
	}
	if config.Retry.MaxRetries == 0 {
		config.Retry = DefaultRetryConfig()
	}

	return &OpenAIClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.HTTPTimeout},
	}, nil
}

// Chat sends a normalized message sequence to /v1/chat/completions.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message) (*ChatResponse, error) {
	payload := map[string]any{
		"model":      c.config.Model,
		"messages":   c.convertMessages(messages),
		"max_tokens": c.config.MaxTokens,
		"stream":     false,
	}
	if c.config.Temperature > 0 {
		payload["temperature"] = c.config.Temperature
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	return withRetries(ctx, "openai", c.config.Retry, func() (*ChatResponse, error) {
		return c.doRequest(ctx, body)
	})
}

func (c *OpenAIClient) doRequest(ctx context.Context, body []byte) (*ChatResponse, error) {
	url := strings.TrimSuffix(c.config.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Provider: "openai", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			Provider:   "openai",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(bodyBytes)),
		}
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &APIError{Provider: "openai", Message: "malformed response body", Err: err}
	}

	return parseOpenAIResponse(payload)
}

func (c *OpenAIClient) convertMessages(messages []Message) []map[string]any {
	out := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		out = append(out, map[string]any{
			"role":    string(m.Role),
			"content": m.Content,
		})
	}
	return out
}

func parseOpenAIResponse(payload map[string]any) (*ChatResponse, error) {
	choices, ok := payload["choices"].([]any)
	if !ok || len(choices) == 0 {
		return nil, &APIError{Provider: "openai", Message: "no choices in response"}
	}

	choice, ok := choices[0].(map[string]any)
	if !ok {
		return nil, &APIError{Provider: "openai", Message: "malformed choice in response"}
	}

	message, ok := choice["message"].(map[string]any)
	if !ok {
		return nil, &APIError{Provider: "openai", Message: "malformed message in response"}
	}

	content, _ := message["content"].(string)

	return &ChatResponse{
		Content:   content,
		ToolCalls: parseOpenAIToolCalls(message),
		Usage:     parseOpenAIUsage(payload),
	}, nil
}

func parseOpenAIToolCalls(message map[string]any) []ToolCall {
	rawCalls, ok := message["tool_calls"].([]any)
	if !ok {
		return nil
	}

	var calls []ToolCall
	for _, raw := range rawCalls {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		id, _ := entry["id"].(string)
		fn, ok := entry["function"].(map[string]any)
		if !ok {
			continue
		}

		name, _ := fn["name"].(string)
		if name == "" {
			continue
		}

		args := map[string]any{}
		switch v := fn["arguments"].(type) {
		case string:
			if v != "" {
				if err := json.Unmarshal([]byte(v), &args); err != nil {
					continue
				}
			}
		case map[string]any:
			args = v
		}

		calls = append(calls, ToolCall{ID: id, Name: name, Args: args})
	}
	return calls
}

func parseOpenAIUsage(payload map[string]any) Usage {
	usageMap, ok := payload["usage"].(map[string]any)
	if !ok {
		return Usage{}
	}
	return Usage{TotalTokens: intFromAny(usageMap["total_tokens"])}
}

// intFromAny converts JSON numeric values to int, zero on mismatch.
func intFromAny(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0
		}
		return int(i)
	}
	return 0
}

// Model returns the model name.
func (c *OpenAIClient) Model() string {
	return c.config.Model
}

// Close is a no-op; the HTTP client holds no persistent connection state
// worth tearing down.
func (c *OpenAIClient) Close() error {
	return nil
}

var _ Client = (*OpenAIClient)(nil)
