package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mason/internal/logging"

	"github.com/ollama/ollama/api"
)

// OllamaConfig holds configuration for the Ollama API client.
type OllamaConfig struct {
	BaseURL     string // Default: "http://localhost:11434"
	Model       string // e.g. "qwen2.5-coder:14b"
	Temperature float32
	MaxTokens   int32
	HTTPTimeout time.Duration
	Retry       RetryConfig
}

// OllamaClient implements Client for local Ollama inference.
type OllamaClient struct {
	client *api.Client
	config OllamaConfig
}

// NewOllamaClient creates a new Ollama API client.
func NewOllamaClient(config OllamaConfig) (*OllamaClient, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 8192
	}
	if config.HTTPTimeout == 0 {
		config.HTTPTimeout = 120 * time.Second
	}
	if config.Retry.MaxRetries == 0 {
		config.Retry = DefaultRetryConfig()
	}

	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid BaseURL: %w", err)
	}

	if baseURL.Scheme == "http" {
		host := baseURL.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			logging.Warn("Ollama connection uses unencrypted HTTP to remote host", "host", host)
		}
	}

	httpClient := &http.Client{Timeout: config.HTTPTimeout}

	return &OllamaClient{
		client: api.NewClient(baseURL, httpClient),
		config: config,
	}, nil
}

// Chat sends a normalized message sequence through the Ollama chat API.
// Streaming is disabled; the full response arrives in one callback.
func (c *OllamaClient) Chat(ctx context.Context, messages []Message) (*ChatResponse, error) {
	converted := make([]api.Message, 0, len(messages))
	for _, m := range messages {
		converted = append(converted, api.Message{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	req := &api.ChatRequest{
		Model:    c.config.Model,
		Messages: converted,
		Stream:   Ptr(false),
		Options: map[string]any{
			"num_predict": c.config.MaxTokens,
		},
	}
	if c.config.Temperature > 0 {
		req.Options["temperature"] = c.config.Temperature
	}

	return withRetries(ctx, "ollama", c.config.Retry, func() (*ChatResponse, error) {
		return c.doChat(ctx, req)
	})
}

func (c *OllamaClient) doChat(ctx context.Context, req *api.ChatRequest) (*ChatResponse, error) {
	resp := &ChatResponse{}

	err := c.client.Chat(ctx, req, func(r api.ChatResponse) error {
		resp.Content += r.Message.Content

		for i, tc := range r.Message.ToolCalls {
			resp.ToolCalls = append(resp.ToolCalls, convertOllamaToolCall(tc, i))
		}

		if r.Done {
			resp.Usage = Usage{TotalTokens: r.PromptEvalCount + r.EvalCount}
		}
		return nil
	})
	if err != nil {
		return nil, c.wrapError(err)
	}

	return resp, nil
}

func convertOllamaToolCall(tc api.ToolCall, index int) ToolCall {
	id := tc.ID
	if id == "" {
		id = fmt.Sprintf("call_%d", index)
	}
	return ToolCall{
		ID:   id,
		Name: tc.Function.Name,
		Args: tc.Function.Arguments.ToMap(),
	}
}

// wrapError converts Ollama transport errors into *APIError with
// actionable messages for the common local-server failure modes.
func (c *OllamaClient) wrapError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return &APIError{
			Provider: "ollama",
			Message:  "Ollama server is not running (start it with: ollama serve)",
			Err:      err,
		}
	case strings.Contains(msg, "not found"):
		return &APIError{
			Provider: "ollama",
			Message:  fmt.Sprintf("model %q is not installed (pull it with: ollama pull %s)", c.config.Model, c.config.Model),
			Err:      err,
		}
	}

	return &APIError{Provider: "ollama", Message: msg, Err: err}
}

// Model returns the model name.
func (c *OllamaClient) Model() string {
	return c.config.Model
}

// Close is a no-op; the Ollama client holds no explicit connection.
func (c *OllamaClient) Close() error {
	return nil
}

var _ Client = (*OllamaClient)(nil)
