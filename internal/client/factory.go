package client

import (
	"context"
	"fmt"
	"os"

	"mason/internal/config"
	"mason/internal/logging"
)

// New creates the adapter for a resolved model. The credential, when
// required, has already been validated against the registry; it is read
// from the environment here so the key never travels through config
// structs.
func New(ctx context.Context, cfg *config.Config, provider config.Provider, model string, pc config.ProviderConfig) (Client, error) {
	maxTokens := pc.MaxOutputTokens
	if cfg.Model.MaxOutputTokens > 0 {
		maxTokens = cfg.Model.MaxOutputTokens
	}

	retry := RetryConfig{
		MaxRetries: cfg.API.Retry.MaxRetries,
		RetryDelay: cfg.API.Retry.RetryDelay,
	}

	logging.Debug("creating client", "provider", provider, "model", model)

	switch provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:      os.Getenv(pc.CredentialEnvVar),
			BaseURL:     cfg.API.OpenAIBaseURL,
			Model:       model,
			MaxTokens:   maxTokens,
			Temperature: cfg.Model.Temperature,
			HTTPTimeout: cfg.API.Retry.HTTPTimeout,
			Retry:       retry,
		})
	case config.ProviderAnthropic:
		return NewAnthropicClient(AnthropicConfig{
			APIKey:      os.Getenv(pc.CredentialEnvVar),
			BaseURL:     cfg.API.AnthropicBaseURL,
			Model:       model,
			MaxTokens:   maxTokens,
			Temperature: cfg.Model.Temperature,
			HTTPTimeout: cfg.API.Retry.HTTPTimeout,
			Retry:       retry,
		})
	case config.ProviderOllama:
		return NewOllamaClient(OllamaConfig{
			BaseURL:     cfg.API.OllamaBaseURL,
			Model:       model,
			MaxTokens:   maxTokens,
			Temperature: cfg.Model.Temperature,
			HTTPTimeout: cfg.API.Retry.HTTPTimeout,
			Retry:       retry,
		})
	case config.ProviderGemini:
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey:      os.Getenv(pc.CredentialEnvVar),
			Model:       model,
			MaxTokens:   maxTokens,
			Temperature: cfg.Model.Temperature,
			Retry:       retry,
		})
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
