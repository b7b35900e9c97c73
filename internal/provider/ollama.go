package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultOllamaURL = "http://localhost:11434"

// Ollama talks to a local Ollama daemon over its native REST API.
type Ollama struct {
	client *resty.Client
	model  string
}

// NewOllama creates an Ollama-backed provider. An empty base URL falls back
// to the daemon's default port.
func NewOllama(cfg Config) *Ollama {
	base := cfg.BaseURL
	if base == "" {
		base = defaultOllamaURL
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &Ollama{client: client, model: cfg.Model}
}

// Name implements Provider.
func (o *Ollama) Name() string { return "ollama" }

// IsAvailable probes the daemon's tag listing with a short deadline.
func (o *Ollama) IsAvailable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	resp, err := o.client.R().SetContext(probeCtx).Get("/api/tags")
	return err == nil && resp.StatusCode() == http.StatusOK
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListModels returns the names of locally installed models.
func (o *Ollama) ListModels(ctx context.Context) ([]string, error) {
	resp, err := o.client.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return nil, fmt.Errorf("ollama request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("ollama status %d: %s", resp.StatusCode(), resp.String())
	}

	var tags ollamaTagsResponse
	if err := json.Unmarshal(resp.Body(), &tags); err != nil {
		return nil, fmt.Errorf("decode tags response: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

type ollamaChatRequest struct {
	Model    string                 `json:"model"`
	Messages []Message              `json:"messages"`
	Stream   bool                   `json:"stream"`
	Format   string                 `json:"format,omitempty"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// ChatCompletion runs a non-streaming chat call against /api/chat.
func (o *Ollama) ChatCompletion(ctx context.Context, messages []Message, opts CompletionOptions) (string, error) {
	model, err := o.resolveModel(ctx)
	if err != nil {
		return "", err
	}

	req := ollamaChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Options: map[string]interface{}{
			"temperature": opts.Temperature,
		},
	}
	if opts.MaxTokens > 0 {
		req.Options["num_predict"] = opts.MaxTokens
	}
	if opts.JSONFormat {
		req.Format = "json"
	}

	resp, err := o.client.R().SetContext(ctx).SetBody(&req).Post("/api/chat")
	if err != nil {
		return "", fmt.Errorf("ollama chat request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("ollama status %d: %s", resp.StatusCode(), resp.String())
	}

	var chat ollamaChatResponse
	if err := json.Unmarshal(resp.Body(), &chat); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if chat.Message.Content == "" {
		return "", fmt.Errorf("empty response from model %s", model)
	}

	return chat.Message.Content, nil
}

// PullModel installs a model through /api/pull.
func (o *Ollama) PullModel(ctx context.Context, name string) error {
	body := map[string]interface{}{"name": name, "stream": false}

	resp, err := o.client.R().SetContext(ctx).SetBody(body).Post("/api/pull")
	if err != nil {
		return fmt.Errorf("ollama pull request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("ollama pull status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// resolveModel applies the resolution order: explicit setting, else the first
// installed model.
func (o *Ollama) resolveModel(ctx context.Context) (string, error) {
	if o.model != "" {
		return o.model, nil
	}

	names, err := o.ListModels(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve model: %w", err)
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no models installed on ollama")
	}
	return names[0], nil
}
