package provider

import (
	"context"
	"fmt"
	"sync"
)

// Mock provides a test implementation of the Provider interface with
// scriptable responses and call counting. No network calls are made.
type Mock struct {
	mu sync.Mutex

	Available bool
	Models    []string
	Response  string
	Err       error

	CompletionCalls int
	LastMessages    []Message
	LastOptions     CompletionOptions
	PulledModels    []string
}

// NewMock creates an available mock that returns the given response.
func NewMock(response string) *Mock {
	return &Mock{
		Available: true,
		Models:    []string{"mock-model"},
		Response:  response,
	}
}

// Name implements Provider.
func (m *Mock) Name() string { return "mock" }

// IsAvailable implements Provider.
func (m *Mock) IsAvailable(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Available
}

// ListModels implements Provider.
func (m *Mock) ListModels(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.Available {
		return nil, fmt.Errorf("mock provider unavailable")
	}
	return m.Models, nil
}

// ChatCompletion implements Provider, returning the scripted response.
func (m *Mock) ChatCompletion(ctx context.Context, messages []Message, opts CompletionOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CompletionCalls++
	m.LastMessages = messages
	m.LastOptions = opts

	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// PullModel implements Provider.
func (m *Mock) PullModel(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PulledModels = append(m.PulledModels, name)
	return nil
}

// Calls returns how many chat completions were requested.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CompletionCalls
}
