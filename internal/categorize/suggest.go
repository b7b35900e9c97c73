package categorize

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/timearc/timearc/internal/models"
	"github.com/timearc/timearc/internal/provider"
)

// The utilities below share the categorizer's availability-check/fallback
// pattern: each independently checks enablement and reachability and reports
// "no result" on any failure, never an error.

// Summarize produces a one-line summary of an activity block.
func (a *AICategorizer) Summarize(ctx context.Context, text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}

	raw, ok := a.complete(ctx, buildSummarizePrompt(text), provider.CompletionOptions{Temperature: 0.3, MaxTokens: 60})
	if !ok {
		return "", false
	}

	summary := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"`))
	if summary == "" {
		return "", false
	}
	return summary, true
}

// IsTitleInformative classifies whether a window title says anything useful
// about the user's actual activity. The second return value is false when no
// classification could be made.
func (a *AICategorizer) IsTitleInformative(ctx context.Context, title string) (bool, bool) {
	if strings.TrimSpace(title) == "" {
		return false, true
	}

	raw, ok := a.complete(ctx, buildTitleInformativePrompt(title), provider.CompletionOptions{Temperature: 0, JSONFormat: true})
	if !ok {
		return false, false
	}

	cleaned := CleanModelJSON(raw)
	if cleaned == "" {
		return false, false
	}

	var result struct {
		Informative bool `json:"informative"`
	}
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		a.logger.Warn("failed to parse title classification", "error", err)
		return false, false
	}

	return result.Informative, true
}

// GenerateTitle produces a short human-readable title for an activity.
func (a *AICategorizer) GenerateTitle(ctx context.Context, details models.ActivityDetails) (string, bool) {
	raw, ok := a.complete(ctx, buildTitlePrompt(details), provider.CompletionOptions{Temperature: 0.3, MaxTokens: 40})
	if !ok {
		return "", false
	}

	title := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"`))
	if title == "" {
		return "", false
	}
	return title, true
}

// SuggestEmoji proposes a single emoji for a category.
func (a *AICategorizer) SuggestEmoji(ctx context.Context, name, description string) (string, bool) {
	raw, ok := a.complete(ctx, buildEmojiPrompt(name, description), provider.CompletionOptions{Temperature: 0.5, JSONFormat: true})
	if !ok {
		return "", false
	}

	cleaned := CleanModelJSON(raw)
	if cleaned == "" {
		return "", false
	}

	var result struct {
		Emoji string `json:"emoji"`
	}
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil || result.Emoji == "" {
		return "", false
	}

	return result.Emoji, true
}

// SuggestCategories proposes a category set from the user's free-text goals,
// used during onboarding. Returns nil on any failure; nothing is persisted
// until the user accepts a suggestion.
func (a *AICategorizer) SuggestCategories(ctx context.Context, goals string) []models.CategorySuggestion {
	if strings.TrimSpace(goals) == "" {
		return nil
	}

	raw, ok := a.complete(ctx, buildSuggestionsPrompt(goals), provider.CompletionOptions{Temperature: 0.5, JSONFormat: true})
	if !ok {
		return nil
	}

	cleaned := CleanModelJSON(raw)
	if cleaned == "" {
		return nil
	}

	var result struct {
		Categories []models.CategorySuggestion `json:"categories"`
	}
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		a.logger.Warn("failed to parse category suggestions", "error", err)
		return nil
	}

	suggestions := result.Categories[:0]
	for _, s := range result.Categories {
		if s.Name == "" {
			continue
		}
		suggestions = append(suggestions, s)
	}
	if len(suggestions) == 0 {
		return nil
	}

	return suggestions
}
