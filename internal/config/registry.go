package config

import (
	"fmt"
	"strings"
)

// Provider identifies a model backend family.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
	ProviderGemini    Provider = "gemini"
)

// KnownProviders lists every provider family an adapter exists for.
var KnownProviders = []Provider{
	ProviderOpenAI,
	ProviderAnthropic,
	ProviderOllama,
	ProviderGemini,
}

// ModelIdentifier is a "provider/model-name" key into the registry.
type ModelIdentifier string

// ParseModelIdentifier splits an identifier into its provider and model
// segments. The provider segment must be a known provider family.
func ParseModelIdentifier(id string) (Provider, string, error) {
	provider, model, ok := strings.Cut(id, "/")
	if !ok || provider == "" || model == "" {
		return "", "", &ConfigurationError{
			Reason: fmt.Sprintf("invalid model identifier %q: expected provider/model-name", id),
		}
	}

	for _, known := range KnownProviders {
		if Provider(provider) == known {
			return known, model, nil
		}
	}

	return "", "", &ConfigurationError{
		Reason: fmt.Sprintf("unknown provider %q in model identifier %q", provider, id),
	}
}

// ProviderConfig describes the static capabilities and credential
// requirements of one registered model. Entries are read-only after init.
type ProviderConfig struct {
	MaxOutputTokens   int32
	SupportsTools     bool
	SupportsStreaming bool
	RequiresAPIKey    bool
	CredentialEnvVar  string
}

// Registry maps every supported ModelIdentifier to its configuration.
var Registry = map[ModelIdentifier]ProviderConfig{
	"anthropic/claude-3-5-sonnet-latest": {
		MaxOutputTokens:   8192,
		SupportsTools:     true,
		SupportsStreaming: true,
		RequiresAPIKey:    true,
		CredentialEnvVar:  "ANTHROPIC_API_KEY",
	},
	"openai/gpt-4o": {
		MaxOutputTokens:   8192,
		SupportsTools:     true,
		SupportsStreaming: true,
		RequiresAPIKey:    true,
		CredentialEnvVar:  "OPENAI_API_KEY",
	},
	"ollama/qwen2.5-coder:14b": {
		MaxOutputTokens:   8192,
		SupportsTools:     true,
		SupportsStreaming: true,
		RequiresAPIKey:    false,
	},
	"ollama/llama3.2": {
		MaxOutputTokens:   8192,
		SupportsTools:     true,
		SupportsStreaming: true,
		RequiresAPIKey:    false,
	},
	"gemini/gemini-2.5-flash": {
		MaxOutputTokens:   8192,
		SupportsTools:     true,
		SupportsStreaming: true,
		RequiresAPIKey:    true,
		CredentialEnvVar:  "GEMINI_API_KEY",
	},
	"gemini/gemini-2.5-pro": {
		MaxOutputTokens:   8192,
		SupportsTools:     true,
		SupportsStreaming: true,
		RequiresAPIKey:    true,
		CredentialEnvVar:  "GEMINI_API_KEY",
	},
}

// Lookup resolves an identifier against the registry.
func Lookup(id ModelIdentifier) (ProviderConfig, bool) {
	cfg, ok := Registry[id]
	return cfg, ok
}

// RegisteredModels returns all registry keys, for help output.
func RegisteredModels() []ModelIdentifier {
	ids := make([]ModelIdentifier, 0, len(Registry))
	for id := range Registry {
		ids = append(ids, id)
	}
	return ids
}
