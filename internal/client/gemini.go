package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// GeminiConfig holds configuration for the Google Gemini API.
type GeminiConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int32
	Temperature float32
	Retry       RetryConfig
}

// GeminiClient implements Client over the genai SDK.
type GeminiClient struct {
	client *genai.Client
	config GeminiConfig
	gen    *genai.GenerateContentConfig
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, config GeminiConfig) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 8192
	}
	if config.Retry.MaxRetries == 0 {
		config.Retry = DefaultRetryConfig()
	}
	if config.Retry.MaxDelay == 0 {
		config.Retry.MaxDelay = 30 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  config.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	gen := &genai.GenerateContentConfig{
		MaxOutputTokens: config.MaxTokens,
	}
	if config.Temperature > 0 {
		gen.Temperature = Ptr(config.Temperature)
	}

	return &GeminiClient{
		client: client,
		config: config,
		gen:    gen,
	}, nil
}

// Chat sends a normalized message sequence through GenerateContent.
// System messages map to the API's native system instruction.
func (c *GeminiClient) Chat(ctx context.Context, messages []Message) (*ChatResponse, error) {
	var contents []*genai.Content
	gen := *c.gen

	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			gen.SystemInstruction = genai.NewContentFromText(m.Content, genai.RoleUser)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	return withRetries(ctx, "gemini", c.config.Retry, func() (*ChatResponse, error) {
		resp, err := c.client.Models.GenerateContent(ctx, c.config.Model, contents, &gen)
		if err != nil {
			return nil, &APIError{Provider: "gemini", Err: err}
		}
		return normalizeGeminiResponse(resp), nil
	})
}

func normalizeGeminiResponse(resp *genai.GenerateContentResponse) *ChatResponse {
	out := &ChatResponse{}

	if resp == nil {
		return out
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.Text != "" && !part.Thought {
				out.Content += part.Text
			}
			if part.FunctionCall != nil {
				out.ToolCalls = append(out.ToolCalls, ToolCall{
					ID:   part.FunctionCall.ID,
					Name: part.FunctionCall.Name,
					Args: part.FunctionCall.Args,
				})
			}
		}
		break // only the first candidate is used
	}

	if resp.UsageMetadata != nil {
		out.Usage = Usage{TotalTokens: int(resp.UsageMetadata.TotalTokenCount)}
	}

	return out
}

// Model returns the model name.
func (c *GeminiClient) Model() string {
	return c.config.Model
}

// Close releases the underlying SDK client.
func (c *GeminiClient) Close() error {
	return nil
}

var _ Client = (*GeminiClient)(nil)
