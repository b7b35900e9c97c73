package categorize

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/timearc/timearc/internal/models"
	"github.com/timearc/timearc/internal/provider"
)

// ProviderSource yields the currently selected AI provider. Resolution happens
// per call so settings changes take effect without a restart.
type ProviderSource interface {
	Resolve(ctx context.Context) (provider.Provider, error)
}

// SettingsProviderSource builds providers from the settings table, reusing a
// constructed (and availability-cached) instance while its connection settings
// are unchanged.
type SettingsProviderSource struct {
	settings        models.SettingsRepository
	requestTimeout  time.Duration
	availabilityTTL time.Duration

	mu     sync.Mutex
	cached map[string]provider.Provider
}

// NewSettingsProviderSource creates a provider source over the settings table.
func NewSettingsProviderSource(settings models.SettingsRepository, requestTimeout time.Duration) *SettingsProviderSource {
	return &SettingsProviderSource{
		settings:        settings,
		requestTimeout:  requestTimeout,
		availabilityTTL: 30 * time.Second,
		cached:          make(map[string]provider.Provider),
	}
}

// Resolve returns the provider selected by the ai_provider setting.
func (s *SettingsProviderSource) Resolve(ctx context.Context) (provider.Provider, error) {
	providerType, err := s.settings.Get(ctx, models.SettingAIProvider)
	if err != nil {
		return nil, err
	}
	if providerType == "" {
		providerType = models.ProviderOllama
	}

	cfg, err := s.configFor(ctx, providerType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s|%s|%s", providerType, cfg.BaseURL, cfg.Model)

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.cached[key]; ok {
		return p, nil
	}

	p, err := provider.New(providerType, cfg)
	if err != nil {
		return nil, err
	}

	wrapped := provider.NewAvailabilityCache(p, s.availabilityTTL)
	s.cached[key] = wrapped
	return wrapped, nil
}

func (s *SettingsProviderSource) configFor(ctx context.Context, providerType string) (provider.Config, error) {
	cfg := provider.Config{RequestTimeout: s.requestTimeout}

	var urlKey, modelKey string
	switch providerType {
	case models.ProviderOllama:
		urlKey, modelKey = models.SettingOllamaBaseURL, models.SettingOllamaModel
	case models.ProviderOpenAICompat:
		urlKey, modelKey = models.SettingOpenAIBaseURL, models.SettingOpenAIModel
		apiKey, err := s.settings.Get(ctx, models.SettingOpenAIAPIKey)
		if err != nil {
			return provider.Config{}, err
		}
		cfg.APIKey = apiKey
	default:
		return provider.Config{}, fmt.Errorf("unknown provider type: %s", providerType)
	}

	baseURL, err := s.settings.Get(ctx, urlKey)
	if err != nil {
		return provider.Config{}, err
	}
	model, err := s.settings.Get(ctx, modelKey)
	if err != nil {
		return provider.Config{}, err
	}

	cfg.BaseURL = baseURL
	cfg.Model = model
	return cfg, nil
}

// StaticProviderSource always resolves to the same provider. Used by tests.
type StaticProviderSource struct {
	P provider.Provider
}

// Resolve implements ProviderSource.
func (s StaticProviderSource) Resolve(ctx context.Context) (provider.Provider, error) {
	return s.P, nil
}

// AICategorizer produces categorization decisions and other small AI-backed
// utilities via the selected local model, degrading to "no result" on any
// failure. It never returns an error to its callers: unavailability,
// timeouts, and malformed responses all read as nil.
type AICategorizer struct {
	settings  models.SettingsRepository
	providers ProviderSource
	cache     *ActivityCache
	logger    *slog.Logger
	timeout   time.Duration
}

// NewAICategorizer creates an AI categorizer. The cache is populated on every
// successful decision; reads from it belong to the pipeline.
func NewAICategorizer(settings models.SettingsRepository, providers ProviderSource, cache *ActivityCache, timeout time.Duration, logger *slog.Logger) *AICategorizer {
	return &AICategorizer{
		settings:  settings,
		providers: providers,
		cache:     cache,
		logger:    logger,
		timeout:   timeout,
	}
}

// Enabled reports whether AI categorization is switched on in settings.
func (a *AICategorizer) Enabled(ctx context.Context) bool {
	enabled, err := a.settings.GetBool(ctx, models.SettingAIEnabled)
	if err != nil {
		a.logger.Warn("failed to read ai_enabled setting", "error", err)
		return false
	}
	return enabled
}

// Categorize asks the selected model to assign the activity to one of the
// user's categories. Returns nil when AI is disabled, the provider is
// unreachable, the call fails, or the response cannot be parsed; the caller
// falls through to the rule engine.
func (a *AICategorizer) Categorize(ctx context.Context, details models.ActivityDetails, categories []models.Category, goals string) *models.CategoryChoice {
	if len(categories) == 0 {
		return nil
	}

	prompt := buildCategorizationPrompt(details, categories, goals)
	raw, ok := a.complete(ctx, prompt, provider.CompletionOptions{Temperature: 0.2, JSONFormat: true})
	if !ok {
		return nil
	}

	cleaned := CleanModelJSON(raw)
	if cleaned == "" {
		a.logger.Warn("no JSON object in model response", "response_length", len(raw))
		return nil
	}

	var choice models.CategoryChoice
	if err := json.Unmarshal([]byte(cleaned), &choice); err != nil {
		a.logger.Warn("failed to parse categorization response", "error", err)
		return nil
	}
	if choice.CategoryName == "" {
		a.logger.Warn("model response missing chosenCategoryName")
		return nil
	}

	a.cache.Put(details, choice)
	return &choice
}

// complete runs the shared precondition gate (enabled, provider resolvable,
// provider reachable) and a single chat call with the configured timeout.
func (a *AICategorizer) complete(ctx context.Context, prompt string, opts provider.CompletionOptions) (string, bool) {
	if !a.Enabled(ctx) {
		return "", false
	}

	p, err := a.providers.Resolve(ctx)
	if err != nil {
		a.logger.Warn("failed to resolve AI provider", "error", err)
		return "", false
	}

	if !p.IsAvailable(ctx) {
		a.logger.Debug("AI provider unavailable", "provider", p.Name())
		return "", false
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := p.ChatCompletion(callCtx, []provider.Message{
		{Role: provider.RoleUser, Content: prompt},
	}, opts)
	if err != nil {
		a.logger.Warn("AI completion failed", "provider", p.Name(), "error", err)
		return "", false
	}

	return raw, true
}
