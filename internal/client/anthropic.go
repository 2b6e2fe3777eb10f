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

const anthropicVersion = "2023-06-01"

// AnthropicConfig holds configuration for the Anthropic Messages API.
type AnthropicConfig struct {
	APIKey      string
	BaseURL     string // Default: "https://api.anthropic.com"
	Model       string
	MaxTokens   int32
	Temperature float32
	HTTPTimeout time.Duration
	Retry       RetryConfig
}

// AnthropicClient implements Client for Anthropic-compatible APIs.
type AnthropicClient struct {
	config     AnthropicConfig
	httpClient *http.Client
}

// NewAnthropicClient creates a new Anthropic Messages API client.
func NewAnthropicClient(config AnthropicConfig) (*AnthropicClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.anthropic.com"
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

	return &AnthropicClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.HTTPTimeout},
	}, nil
}

// Chat sends a normalized message sequence to /v1/messages.
//
// The Messages API takes system prompts as a top-level field, not a
// message role, so system messages are lifted out of the sequence.
func (c *AnthropicClient) Chat(ctx context.Context, messages []Message) (*ChatResponse, error) {
	var system []string
	converted := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		converted = append(converted, map[string]any{
			"role":    string(m.Role),
			"content": m.Content,
		})
	}

	payload := map[string]any{
		"model":      c.config.Model,
		"max_tokens": c.config.MaxTokens,
		"messages":   converted,
		"stream":     false,
	}
	if len(system) > 0 {
		payload["system"] = strings.Join(system, "\n\n")
	}
	if c.config.Temperature > 0 {
		payload["temperature"] = c.config.Temperature
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	return withRetries(ctx, "anthropic", c.config.Retry, func() (*ChatResponse, error) {
		return c.doRequest(ctx, body)
	})
}

func (c *AnthropicClient) doRequest(ctx context.Context, body []byte) (*ChatResponse, error) {
	url := strings.TrimSuffix(c.config.BaseURL, "/") + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.config.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Provider: "anthropic", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			Provider:   "anthropic",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(bodyBytes)),
		}
	}

	var payload anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &APIError{Provider: "anthropic", Message: "malformed response body", Err: err}
	}

	return payload.normalize(), nil
}

type anthropicResponse struct {
	Content []anthropicBlock `json:"content"`
	Usage   anthropicUsage   `json:"usage"`
}

type anthropicBlock struct {
	Type  string         `json:"type"`
	Text  string         `json:"text,omitempty"`
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// normalize flattens content blocks into the shared response shape. Text
// blocks concatenate; tool_use blocks become ToolCalls in order.
func (r *anthropicResponse) normalize() *ChatResponse {
	var text strings.Builder
	var calls []ToolCall

	for _, block := range r.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			calls = append(calls, ToolCall{
				ID:   block.ID,
				Name: block.Name,
				Args: block.Input,
			})
		}
	}

	return &ChatResponse{
		Content:   text.String(),
		ToolCalls: calls,
		Usage:     Usage{TotalTokens: r.Usage.InputTokens + r.Usage.OutputTokens},
	}
}

// Model returns the model name.
func (c *AnthropicClient) Model() string {
	return c.config.Model
}

// Close is a no-op for the HTTP-based client.
func (c *AnthropicClient) Close() error {
	return nil
}

var _ Client = (*AnthropicClient)(nil)
