package provider

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAICompatURL = "http://localhost:1234/v1"

// OpenAICompat talks to any OpenAI-compatible local server (LM Studio,
// llama.cpp server, vLLM) through the standard chat-completions API.
type OpenAICompat struct {
	client *openai.Client
	model  string
}

// NewOpenAICompat creates a provider for an OpenAI-compatible HTTP API. Local
// servers usually accept any API key; the key is still passed through for
// servers that check one.
func NewOpenAICompat(cfg Config) *OpenAICompat {
	base := cfg.BaseURL
	if base == "" {
		base = defaultOpenAICompatURL
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "not-needed"
	}

	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = base

	return &OpenAICompat{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

// Name implements Provider.
func (p *OpenAICompat) Name() string { return "openai" }

// IsAvailable probes the model listing with a short deadline.
func (p *OpenAICompat) IsAvailable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := p.client.ListModels(probeCtx)
	return err == nil
}

// ListModels returns the server's available model ids.
func (p *OpenAICompat) ListModels(ctx context.Context) ([]string, error) {
	resp, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.ID)
	}
	return names, nil
}

// ChatCompletion runs a chat call, requesting JSON mode when hinted.
func (p *OpenAICompat) ChatCompletion(ctx context.Context, messages []Message, opts CompletionOptions) (string, error) {
	model, err := p.resolveModel(ctx)
	if err != nil {
		return "", err
	}

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	request := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: opts.Temperature,
		Messages:    chatMessages,
	}
	if opts.MaxTokens > 0 {
		request.MaxTokens = opts.MaxTokens
	}
	if opts.JSONFormat {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned from model %s", model)
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty response from model %s (finish_reason: %s)", model, resp.Choices[0].FinishReason)
	}

	return content, nil
}

// PullModel is unsupported: OpenAI-compatible servers manage models
// themselves.
func (p *OpenAICompat) PullModel(ctx context.Context, name string) error {
	return ErrPullUnsupported
}

func (p *OpenAICompat) resolveModel(ctx context.Context) (string, error) {
	if p.model != "" {
		return p.model, nil
	}

	names, err := p.ListModels(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve model: %w", err)
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no models available on server")
	}
	return names[0], nil
}
