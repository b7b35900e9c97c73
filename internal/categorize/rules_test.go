package categorize

import (
	"strings"
	"testing"

	"github.com/timearc/timearc/internal/models"
)

func userCategories(names ...string) []models.Category {
	categories := make([]models.Category, 0, len(names))
	for i, name := range names {
		categories = append(categories, models.Category{
			ID:     name + "-id",
			UserID: "user-1",
			Name:   name,
			// First half productive, mirrors a typical setup.
			Productive: i == 0,
		})
	}
	return categories
}

func TestRuleEngineVSCodeIsWork(t *testing.T) {
	engine := NewRuleEngine()

	details := models.ActivityDetails{OwnerName: "VSCode"}
	name, score, _ := engine.bestArchetype(details)

	if name != "work" {
		t.Fatalf("expected work archetype, got %q", name)
	}
	if score < 3 {
		t.Fatalf("expected app-name match to score >= 3, got %d", score)
	}

	choice := engine.Categorize(details, userCategories("Work", "Entertainment"))
	if choice == nil {
		t.Fatal("expected a choice")
	}
	if choice.CategoryName != "Work" {
		t.Errorf("expected Work, got %q", choice.CategoryName)
	}
}

func TestRuleEngineYouTubeIsEntertainment(t *testing.T) {
	engine := NewRuleEngine()

	details := models.ActivityDetails{
		OwnerName: "Google Chrome",
		URL:       "https://youtube.com/watch?v=x",
	}

	name, score, _ := engine.bestArchetype(details)
	if name != "entertainment" {
		t.Fatalf("expected entertainment archetype, got %q", name)
	}
	if score < 3 {
		t.Fatalf("expected domain match to score >= 3, got %d", score)
	}

	choice := engine.Categorize(details, userCategories("Work", "Entertainment"))
	if choice == nil {
		t.Fatal("expected a choice")
	}
	if choice.CategoryName != "Entertainment" {
		t.Errorf("expected Entertainment, got %q", choice.CategoryName)
	}
}

func TestRuleEngineGitHubInBrowserIsWork(t *testing.T) {
	engine := NewRuleEngine()

	details := models.ActivityDetails{
		OwnerName: "Google Chrome",
		URL:       "https://github.com/org/repo",
	}

	choice := engine.Categorize(details, userCategories("Work", "Entertainment"))
	if choice == nil {
		t.Fatal("expected a choice")
	}
	if choice.CategoryName != "Work" {
		t.Errorf("expected Work for github.com, got %q", choice.CategoryName)
	}
}

func TestRuleEngineKeywordsAloneStayBelowThreshold(t *testing.T) {
	engine := NewRuleEngine()

	// Three learning keywords in the title, no app or domain signal. The
	// keyword signal contributes at most +1 no matter how many keywords
	// match, so the score stays below the threshold.
	details := models.ActivityDetails{
		OwnerName: "SomeUnknownApp",
		Title:     "tutorial course lesson",
	}

	name, score, _ := engine.bestArchetype(details)
	if name != "learning" {
		t.Fatalf("expected learning archetype, got %q", name)
	}
	if score != 1 {
		t.Fatalf("expected keyword signal to score exactly 1, got %d", score)
	}

	choice := engine.Categorize(details, userCategories("Learning", "Uncategorized"))
	if choice == nil {
		t.Fatal("expected a choice")
	}
	if choice.CategoryName != "Uncategorized" {
		t.Errorf("keyword-only activity should stay uncategorized, got %q", choice.CategoryName)
	}
}

func TestRuleEngineKeywordBreaksTieWithStrongSignal(t *testing.T) {
	engine := NewRuleEngine()

	// App name plus a keyword reaches 4; the keyword still only counts once.
	details := models.ActivityDetails{
		OwnerName: "Anki",
		Title:     "chapter guide tutorial",
	}

	name, score, _ := engine.bestArchetype(details)
	if name != "learning" {
		t.Fatalf("expected learning archetype, got %q", name)
	}
	if score != 4 {
		t.Fatalf("expected app match plus single keyword point, got %d", score)
	}
}

func TestRuleEngineZeroCategoriesReturnsNil(t *testing.T) {
	engine := NewRuleEngine()

	choice := engine.Categorize(models.ActivityDetails{OwnerName: "VSCode"}, nil)
	if choice != nil {
		t.Fatalf("expected nil with zero categories, got %+v", choice)
	}
}

func TestRuleEngineWeakSignalFallsBackToFirstCategory(t *testing.T) {
	engine := NewRuleEngine()

	details := models.ActivityDetails{OwnerName: "SomeObscureApp"}
	choice := engine.Categorize(details, userCategories("Focus", "Breaks"))
	if choice == nil {
		t.Fatal("expected a choice")
	}
	// No archetype reaches the threshold and no name matches, so the first
	// category wins.
	if choice.CategoryName != "Focus" {
		t.Errorf("expected first-category fallback, got %q", choice.CategoryName)
	}
	if !strings.Contains(choice.Reasoning, "uncategorized") {
		t.Errorf("reasoning should name the uncategorized outcome, got %q", choice.Reasoning)
	}
}

func TestRuleEngineWeakSignalPrefersUncategorizedCategory(t *testing.T) {
	engine := NewRuleEngine()

	details := models.ActivityDetails{OwnerName: "SomeObscureApp"}
	choice := engine.Categorize(details, userCategories("Work", "Uncategorized"))
	if choice == nil {
		t.Fatal("expected a choice")
	}
	if choice.CategoryName != "Uncategorized" {
		t.Errorf("expected Uncategorized, got %q", choice.CategoryName)
	}
}

func TestRuleEngineDefaultNameMapping(t *testing.T) {
	engine := NewRuleEngine()

	// No category named "work", no substring match, so the archetype's
	// default-name list should find "Productive".
	details := models.ActivityDetails{OwnerName: "GoLand"}
	choice := engine.Categorize(details, userCategories("Chill", "Productive"))
	if choice == nil {
		t.Fatal("expected a choice")
	}
	if choice.CategoryName != "Productive" {
		t.Errorf("expected default-name mapping to Productive, got %q", choice.CategoryName)
	}
}

func TestRuleEngineDescriptionSubstringMapping(t *testing.T) {
	engine := NewRuleEngine()

	categories := []models.Category{
		{ID: "c1", Name: "Deep Focus", Description: "Serious work sessions"},
		{ID: "c2", Name: "Off Time"},
	}

	choice := engine.Categorize(models.ActivityDetails{OwnerName: "VSCode"}, categories)
	if choice == nil {
		t.Fatal("expected a choice")
	}
	if choice.CategoryName != "Deep Focus" {
		t.Errorf("expected description substring match, got %q", choice.CategoryName)
	}
}

func TestRuleEngineMalformedURLFailsClosed(t *testing.T) {
	engine := NewRuleEngine()

	details := models.ActivityDetails{
		OwnerName: "Google Chrome",
		URL:       "://not a url",
	}

	// Must not panic, and the broken URL contributes no domain score.
	name, score, _ := engine.bestArchetype(details)
	if score >= minArchetypeScore {
		t.Errorf("malformed URL should not produce a domain match, got %q with score %d", name, score)
	}
}

func TestSummarizeActivity(t *testing.T) {
	tests := []struct {
		name    string
		details models.ActivityDetails
		want    string
	}{
		{
			name:    "prefers title",
			details: models.ActivityDetails{OwnerName: "Chrome", Title: "Quarterly report draft", URL: "https://docs.google.com/x"},
			want:    "Quarterly report draft",
		},
		{
			name:    "falls back to domain",
			details: models.ActivityDetails{OwnerName: "Chrome", URL: "https://www.youtube.com/watch?v=x"},
			want:    "Browsing youtube.com",
		},
		{
			name:    "falls back to app",
			details: models.ActivityDetails{OwnerName: "Spotify"},
			want:    "Using Spotify",
		},
		{
			name:    "unknown",
			details: models.ActivityDetails{},
			want:    "Unknown activity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := summarizeActivity(tt.details); got != tt.want {
				t.Errorf("summarizeActivity() = %q, want %q", got, tt.want)
			}
		})
	}
}
