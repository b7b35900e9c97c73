package api

import (
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/timearc/timearc/internal/models"
	"github.com/timearc/timearc/internal/provider"
)

// ProviderHandler serves model listing, connectivity tests, and model pulls
// for AI backends.
type ProviderHandler struct {
	settings       models.SettingsRepository
	requestTimeout time.Duration
	logger         *slog.Logger
}

// NewProviderHandler creates a new provider handler.
func NewProviderHandler(settings models.SettingsRepository, requestTimeout time.Duration, logger *slog.Logger) *ProviderHandler {
	return &ProviderHandler{
		settings:       settings,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// providerRequest describes a backend to probe. Empty fields fall back to the
// stored settings for that provider type.
type providerRequest struct {
	Provider string `json:"provider"`
	BaseURL  string `json:"base_url"`
	Model    string `json:"model"`
	APIKey   string `json:"api_key"`
}

// ListModels handles GET /api/providers/models?provider=ollama|openai using
// the stored connection settings.
func (h *ProviderHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	providerType := r.URL.Query().Get("provider")
	if providerType == "" {
		var err error
		providerType, err = h.settings.Get(r.Context(), models.SettingAIProvider)
		if err != nil || providerType == "" {
			providerType = models.ProviderOllama
		}
	}

	p, err := h.build(r, providerRequest{Provider: providerType})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	names, err := p.ListModels(r.Context())
	if err != nil {
		h.logger.Warn("failed to list models", "provider", providerType, "error", err)
		http.Error(w, "Provider unreachable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"provider": providerType,
		"models":   names,
	})
}

// Test handles POST /api/providers/test: a connectivity probe against a
// possibly not-yet-saved configuration.
func (h *ProviderHandler) Test(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req providerRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.build(r, req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	available := p.IsAvailable(r.Context())
	response := map[string]interface{}{
		"provider":  p.Name(),
		"available": available,
	}
	if available {
		if names, err := p.ListModels(r.Context()); err == nil {
			response["models"] = names
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// Pull handles POST /api/providers/pull: download a model on backends that
// support it.
func (h *ProviderHandler) Pull(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req providerRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Model == "" {
		http.Error(w, "model is required", http.StatusBadRequest)
		return
	}

	p, err := h.build(r, req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := p.PullModel(r.Context(), req.Model); err != nil {
		if errors.Is(err, provider.ErrPullUnsupported) {
			http.Error(w, "Provider does not support model pulls", http.StatusBadRequest)
			return
		}
		h.logger.Warn("model pull failed", "model", req.Model, "error", err)
		http.Error(w, "Model pull failed", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// build constructs a provider from the request, falling back to stored
// settings for fields the request leaves empty.
func (h *ProviderHandler) build(r *http.Request, req providerRequest) (provider.Provider, error) {
	providerType := req.Provider
	if providerType == "" {
		providerType = models.ProviderOllama
	}

	cfg := provider.Config{
		BaseURL:        req.BaseURL,
		Model:          req.Model,
		APIKey:         req.APIKey,
		RequestTimeout: h.requestTimeout,
	}

	var urlKey, modelKey string
	switch providerType {
	case models.ProviderOllama:
		urlKey, modelKey = models.SettingOllamaBaseURL, models.SettingOllamaModel
	case models.ProviderOpenAICompat:
		urlKey, modelKey = models.SettingOpenAIBaseURL, models.SettingOpenAIModel
		if cfg.APIKey == "" {
			cfg.APIKey, _ = h.settings.Get(r.Context(), models.SettingOpenAIAPIKey)
		}
	default:
		return nil, ValidationError{Field: "provider", Message: "provider must be 'ollama' or 'openai'"}
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL, _ = h.settings.Get(r.Context(), urlKey)
	}
	if cfg.Model == "" {
		cfg.Model, _ = h.settings.Get(r.Context(), modelKey)
	}

	return provider.New(providerType, cfg)
}
