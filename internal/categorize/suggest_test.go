package categorize

import (
	"context"
	"testing"

	"github.com/timearc/timearc/internal/models"
	"github.com/timearc/timearc/internal/provider"
)

func enabledSettings() *memSettings {
	return newMemSettings(map[string]string{models.SettingAIEnabled: "true"})
}

func TestSummarizeTrimsQuotes(t *testing.T) {
	mock := provider.NewMock(`"Reading release notes"`)
	cat, _ := newTestCategorizer(enabledSettings(), mock)

	summary, ok := cat.Summarize(context.Background(), "some captured window text")
	if !ok {
		t.Fatal("expected a summary")
	}
	if summary != "Reading release notes" {
		t.Errorf("summary = %q", summary)
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	mock := provider.NewMock("anything")
	cat, _ := newTestCategorizer(enabledSettings(), mock)

	if _, ok := cat.Summarize(context.Background(), "   "); ok {
		t.Error("blank input should not produce a summary")
	}
	if mock.Calls() != 0 {
		t.Errorf("blank input should not reach the provider, got %d calls", mock.Calls())
	}
}

func TestIsTitleInformative(t *testing.T) {
	mock := provider.NewMock(`{"informative": false}`)
	cat, _ := newTestCategorizer(enabledSettings(), mock)

	informative, ok := cat.IsTitleInformative(context.Background(), "New Tab")
	if !ok {
		t.Fatal("expected a classification")
	}
	if informative {
		t.Error("expected New Tab to classify as uninformative")
	}
}

func TestIsTitleInformativeEmptyTitle(t *testing.T) {
	mock := provider.NewMock(`{"informative": true}`)
	cat, _ := newTestCategorizer(enabledSettings(), mock)

	informative, ok := cat.IsTitleInformative(context.Background(), "")
	if !ok {
		t.Fatal("empty title should classify without a model call")
	}
	if informative {
		t.Error("empty title is never informative")
	}
	if mock.Calls() != 0 {
		t.Errorf("empty title should not reach the provider, got %d calls", mock.Calls())
	}
}

func TestGenerateTitle(t *testing.T) {
	mock := provider.NewMock(`"Reviewing pull requests"`)
	cat, _ := newTestCategorizer(enabledSettings(), mock)

	title, ok := cat.GenerateTitle(context.Background(), models.ActivityDetails{
		OwnerName: "Google Chrome",
		URL:       "https://github.com/acme/widgets/pulls",
	})
	if !ok {
		t.Fatal("expected a title")
	}
	if title != "Reviewing pull requests" {
		t.Errorf("title = %q", title)
	}
}

func TestGenerateTitleProviderFailure(t *testing.T) {
	mock := provider.NewMock("")
	mock.Err = context.DeadlineExceeded
	cat, _ := newTestCategorizer(enabledSettings(), mock)

	if _, ok := cat.GenerateTitle(context.Background(), models.ActivityDetails{OwnerName: "Slack"}); ok {
		t.Error("provider failure should not produce a title")
	}
}

func TestSuggestEmoji(t *testing.T) {
	mock := provider.NewMock(`{"emoji": "📚"}`)
	cat, _ := newTestCategorizer(enabledSettings(), mock)

	emoji, ok := cat.SuggestEmoji(context.Background(), "Learning", "Courses and reading")
	if !ok {
		t.Fatal("expected an emoji")
	}
	if emoji != "📚" {
		t.Errorf("emoji = %q", emoji)
	}
}

func TestSuggestCategoriesFiltersUnnamed(t *testing.T) {
	mock := provider.NewMock(`{"categories":[{"name":"Deep Work","description":"Focused coding","productive":true},{"name":"","description":"dropped"},{"name":"Breaks","productive":false}]}`)
	cat, _ := newTestCategorizer(enabledSettings(), mock)

	suggestions := cat.SuggestCategories(context.Background(), "ship my side project")
	if len(suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(suggestions))
	}
	if suggestions[0].Name != "Deep Work" || suggestions[1].Name != "Breaks" {
		t.Errorf("unexpected suggestions: %+v", suggestions)
	}
}

func TestSuggestCategoriesNoGoals(t *testing.T) {
	mock := provider.NewMock(`{"categories":[{"name":"Work"}]}`)
	cat, _ := newTestCategorizer(enabledSettings(), mock)

	if got := cat.SuggestCategories(context.Background(), ""); got != nil {
		t.Errorf("expected nil without goals, got %+v", got)
	}
	if mock.Calls() != 0 {
		t.Errorf("no goals should not reach the provider, got %d calls", mock.Calls())
	}
}
