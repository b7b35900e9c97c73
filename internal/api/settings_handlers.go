package api

import (
	"net/http"

	"log/slog"

	"github.com/timearc/timearc/internal/models"
)

// settingsKeys is the set of keys the UI may read or write.
var settingsKeys = []string{
	models.SettingAIEnabled,
	models.SettingCategorizationEnabled,
	models.SettingAIProvider,
	models.SettingOllamaBaseURL,
	models.SettingOllamaModel,
	models.SettingOpenAIBaseURL,
	models.SettingOpenAIModel,
	models.SettingOpenAIAPIKey,
}

// SettingsHandler reads and writes the runtime settings table plus the local
// user's goals.
type SettingsHandler struct {
	settings models.SettingsRepository
	users    models.UserRepository
	userID   string
	logger   *slog.Logger
}

// NewSettingsHandler creates a new settings handler bound to the local user.
func NewSettingsHandler(settings models.SettingsRepository, users models.UserRepository, userID string, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		users:    users,
		userID:   userID,
		logger:   logger,
	}
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	values := make(map[string]string, len(settingsKeys))
	for _, key := range settingsKeys {
		value, err := h.settings.Get(r.Context(), key)
		if err != nil {
			h.logger.Error("failed to read setting", "key", key, "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		values[key] = value
	}

	writeJSON(w, http.StatusOK, values)
}

// Update handles PUT /api/settings with a partial map of settings. Unknown
// keys are rejected; changes take effect for subsequent categorization jobs
// without a restart.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var updates map[string]string
	if err := decodeJSON(r, &updates); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(updates) == 0 {
		http.Error(w, "No settings provided", http.StatusBadRequest)
		return
	}

	for key := range updates {
		if !knownSettingKey(key) {
			http.Error(w, "Unknown setting: "+key, http.StatusBadRequest)
			return
		}
	}
	if v, ok := updates[models.SettingAIProvider]; ok {
		if v != models.ProviderOllama && v != models.ProviderOpenAICompat {
			http.Error(w, "ai_provider must be 'ollama' or 'openai'", http.StatusBadRequest)
			return
		}
	}

	for key, value := range updates {
		if err := h.settings.Set(r.Context(), key, value); err != nil {
			h.logger.Error("failed to write setting", "key", key, "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
	}

	h.logger.Info("settings updated", "count", len(updates))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// goalsRequest carries the user's free-text goals.
type goalsRequest struct {
	Goals string `json:"goals"`
}

// GetUser handles GET /api/user.
func (h *SettingsHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetLocal(r.Context())
	if err != nil {
		h.logger.Error("failed to load local user", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateGoals handles PUT /api/user/goals. Goals feed the AI categorization
// prompt as context.
func (h *SettingsHandler) UpdateGoals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req goalsRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.users.SetGoals(r.Context(), h.userID, req.Goals); err != nil {
		h.logger.Error("failed to update goals", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func knownSettingKey(key string) bool {
	for _, k := range settingsKeys {
		if k == key {
			return true
		}
	}
	return false
}
