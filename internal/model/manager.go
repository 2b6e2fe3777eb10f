// Package model exposes the single unified chat contract to the rest of
// the application. A Manager resolves one ModelIdentifier against the
// registry, validates credentials before any adapter exists, and owns one
// lazily-constructed adapter for its lifetime.
package model

import (
	"context"
	"fmt"
	"os"
	"sync"

	"mason/internal/client"
	"mason/internal/config"
	"mason/internal/logging"
)

// APIError wraps any transport or provider failure surfaced by
// ChatCompletion. Callers never see provider-native error types.
type APIError struct {
	Model string
	Err   error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chat completion with %s failed: %v", e.Model, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Manager selects, validates and owns one provider adapter.
type Manager struct {
	cfg      *config.Config
	id       config.ModelIdentifier
	provider config.Provider
	model    string
	pc       config.ProviderConfig

	once    sync.Once
	adapter client.Client
	initErr error
}

// NewManager resolves the configured model against the registry and
// validates its credential requirement. It fails fast, before any client
// is constructed and before any network activity.
func NewManager(cfg *config.Config) (*Manager, error) {
	id := config.ModelIdentifier(cfg.Model.Name)

	provider, modelName, err := config.ParseModelIdentifier(cfg.Model.Name)
	if err != nil {
		return nil, err
	}

	pc, ok := config.Lookup(id)
	if !ok {
		return nil, &config.ConfigurationError{
			Reason: fmt.Sprintf("model %q not found in registry", cfg.Model.Name),
		}
	}

	if pc.RequiresAPIKey && os.Getenv(pc.CredentialEnvVar) == "" {
		return nil, &config.ConfigurationError{
			Reason: fmt.Sprintf("credential %s required for %s is not set", pc.CredentialEnvVar, cfg.Model.Name),
		}
	}

	return &Manager{
		cfg:      cfg,
		id:       id,
		provider: provider,
		model:    modelName,
		pc:       pc,
	}, nil
}

// Identifier returns the fully-qualified model identifier.
func (m *Manager) Identifier() config.ModelIdentifier {
	return m.id
}

// ProviderConfig returns the resolved registry entry.
func (m *Manager) ProviderConfig() config.ProviderConfig {
	return m.pc
}

// ChatCompletion sends a normalized message sequence and returns the
// normalized response. The adapter is constructed on first use and reused
// for the Manager's lifetime.
func (m *Manager) ChatCompletion(ctx context.Context, messages []client.Message) (*client.ChatResponse, error) {
	adapter, err := m.client(ctx)
	if err != nil {
		return nil, err
	}

	logging.Debug("sending chat completion", "model", m.id, "messages", len(messages))

	resp, err := adapter.Chat(ctx, messages)
	if err != nil {
		return nil, &APIError{Model: string(m.id), Err: err}
	}

	logging.Debug("received chat completion", "model", m.id, "tokens", resp.Usage.TotalTokens)
	return resp, nil
}

// Close releases the adapter if it was ever constructed.
func (m *Manager) Close() error {
	if m.adapter != nil {
		return m.adapter.Close()
	}
	return nil
}

func (m *Manager) client(ctx context.Context) (client.Client, error) {
	m.once.Do(func() {
		adapter, err := client.New(ctx, m.cfg, m.provider, m.model, m.pc)
		if err != nil {
			m.initErr = &config.ConfigurationError{
				Reason: fmt.Sprintf("failed to initialize client for %s", m.provider),
				Err:    err,
			}
			return
		}
		m.adapter = adapter
	})
	return m.adapter, m.initErr
}
