package config

import "time"

// Config represents the main application configuration.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	API     APIConfig     `yaml:"api"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Logging LoggingConfig `yaml:"logging"`
}

// ModelConfig holds model selection settings.
type ModelConfig struct {
	// Name is the fully-qualified "provider/model-name" identifier.
	Name        string  `yaml:"name"`
	Temperature float32 `yaml:"temperature"`
	// MaxOutputTokens overrides the registry value when non-zero.
	MaxOutputTokens int32 `yaml:"max_output_tokens"`
}

// APIConfig holds transport settings shared by all adapters.
type APIConfig struct {
	// OllamaBaseURL overrides the local Ollama endpoint.
	OllamaBaseURL string `yaml:"ollama_base_url,omitempty"`
	// OpenAIBaseURL overrides the OpenAI-compatible endpoint.
	OpenAIBaseURL string `yaml:"openai_base_url,omitempty"`
	// AnthropicBaseURL overrides the Anthropic-compatible endpoint.
	AnthropicBaseURL string `yaml:"anthropic_base_url,omitempty"`

	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig holds retry settings for API calls.
type RetryConfig struct {
	MaxRetries  int           `yaml:"max_retries"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// IngestConfig holds file ingestion limits.
type IngestConfig struct {
	// MaxFileSize is the per-file ceiling in bytes.
	MaxFileSize int64 `yaml:"max_file_size"`
	// MaxTotalSize is the aggregate ceiling for the added-file set.
	// Exceeding it clears the whole set.
	MaxTotalSize int64 `yaml:"max_total_size"`
	// ExcludedDirs are directory names never ingested.
	ExcludedDirs []string `yaml:"excluded_dirs"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Excluded reports whether a directory name is on the exclusion list.
func (c *IngestConfig) Excluded(name string) bool {
	for _, dir := range c.ExcludedDirs {
		if name == dir {
			return true
		}
	}
	return false
}
