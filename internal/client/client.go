// Package client defines the normalized chat contract and one adapter per
// provider family. Everything above this package depends only on Message
// and ChatResponse, never on provider-native types.
package client

import "context"

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one entry in an outbound chat request.
type Message struct {
	Role    Role
	Content string
}

// ToolCall is a normalized function invocation requested by the model.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// Usage carries token accounting from the provider, zero if unavailable.
type Usage struct {
	TotalTokens int
}

// ChatResponse is the single shape every adapter produces regardless of
// the provider's native response schema.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
	Usage     Usage
}

// Client is the capability a provider adapter exposes: send a normalized
// request, receive a normalized response.
type Client interface {
	// Chat sends an ordered message sequence and returns the normalized
	// response. Transport failures come back as *APIError.
	Chat(ctx context.Context, messages []Message) (*ChatResponse, error)

	// Model returns the provider-native model name.
	Model() string

	// Close releases the underlying connection, if any.
	Close() error
}

// Ptr returns a pointer to v, for option structs taking pointer fields.
func Ptr[T any](v T) *T {
	return &v
}
