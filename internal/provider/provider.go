// Package provider abstracts interchangeable local LLM backends behind a
// minimal chat-completion contract. Concrete variants differ only in
// transport and configuration; the categorizer never knows which backend it
// is talking to.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Roles for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat-completion message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionOptions tune a single chat-completion call. JSONFormat is a hint;
// backends that cannot enforce it ignore it and callers must still parse
// defensively.
type CompletionOptions struct {
	Temperature float32
	MaxTokens   int
	JSONFormat  bool
}

// ErrPullUnsupported is returned by backends that cannot install models.
var ErrPullUnsupported = errors.New("model pull not supported by this provider")

// Provider is the uniform contract over local model backends.
type Provider interface {
	// Name identifies the backend for logs and the provider registry.
	Name() string

	// IsAvailable is a cheap reachability probe. It must not panic and must
	// return false rather than error on any failure.
	IsAvailable(ctx context.Context) bool

	// ListModels returns the backend's installed model names.
	ListModels(ctx context.Context) ([]string, error)

	// ChatCompletion returns the assistant's raw text for the given messages.
	// Failures come back as errors; callers treat any error as "no result".
	ChatCompletion(ctx context.Context, messages []Message, opts CompletionOptions) (string, error)

	// PullModel installs a model on backends that support remote
	// installation, returning ErrPullUnsupported otherwise.
	PullModel(ctx context.Context, name string) error
}

// Config holds the per-backend connection settings read from the settings
// table.
type Config struct {
	BaseURL        string
	Model          string
	APIKey         string
	RequestTimeout time.Duration
}

// New constructs a provider for the given type string from settings.
func New(providerType string, cfg Config) (Provider, error) {
	switch providerType {
	case "ollama":
		return NewOllama(cfg), nil
	case "openai":
		return NewOpenAICompat(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", providerType)
	}
}
