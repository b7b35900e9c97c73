package models

// Settings keys stored in the flat string-keyed settings table. Runtime
// behavior toggles live here rather than in environment config so the UI can
// change them without a daemon restart.
const (
	SettingAIEnabled             = "ai_enabled"
	SettingCategorizationEnabled = "categorization_enabled"
	SettingAIProvider            = "ai_provider"
	SettingOllamaBaseURL         = "ollama_base_url"
	SettingOllamaModel           = "ollama_model"
	SettingOpenAIBaseURL         = "openai_base_url"
	SettingOpenAIModel           = "openai_model"
	SettingOpenAIAPIKey          = "openai_api_key"
)

// Provider type values for the ai_provider setting.
const (
	ProviderOllama       = "ollama"
	ProviderOpenAICompat = "openai"
)

// SettingsDefaults returns the settings written at first run.
func SettingsDefaults() map[string]string {
	return map[string]string{
		SettingAIEnabled:             "false",
		SettingCategorizationEnabled: "true",
		SettingAIProvider:            ProviderOllama,
		SettingOllamaBaseURL:         "http://localhost:11434",
		SettingOpenAIBaseURL:         "http://localhost:1234/v1",
	}
}
