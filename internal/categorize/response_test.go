package categorize

import (
	"encoding/json"
	"testing"

	"github.com/timearc/timearc/internal/models"
)

func TestCleanModelJSONBareObject(t *testing.T) {
	raw := `{"chosenCategoryName":"Work","summary":"Coding","reasoning":"Editor open"}`

	got := CleanModelJSON(raw)
	if got != raw {
		t.Errorf("bare object should pass through unchanged, got %q", got)
	}
}

func TestCleanModelJSONStripsMarkdownFences(t *testing.T) {
	fenced := "```json\n{\"chosenCategoryName\":\"Work\",\"summary\":\"Coding\",\"reasoning\":\"Editor open\"}\n```"
	bare := `{"chosenCategoryName":"Work","summary":"Coding","reasoning":"Editor open"}`

	var fromFenced, fromBare models.CategoryChoice
	if err := json.Unmarshal([]byte(CleanModelJSON(fenced)), &fromFenced); err != nil {
		t.Fatalf("fenced input failed to parse: %v", err)
	}
	if err := json.Unmarshal([]byte(CleanModelJSON(bare)), &fromBare); err != nil {
		t.Fatalf("bare input failed to parse: %v", err)
	}

	if fromFenced != fromBare {
		t.Errorf("fenced and bare inputs should parse identically: %+v vs %+v", fromFenced, fromBare)
	}
}

func TestCleanModelJSONFenceWithoutLanguageTag(t *testing.T) {
	fenced := "```\n{\"chosenCategoryName\":\"Work\"}\n```"

	var choice models.CategoryChoice
	if err := json.Unmarshal([]byte(CleanModelJSON(fenced)), &choice); err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if choice.CategoryName != "Work" {
		t.Errorf("expected Work, got %q", choice.CategoryName)
	}
}

func TestCleanModelJSONTrailingProse(t *testing.T) {
	raw := `{"chosenCategoryName":"Entertainment","summary":"Watching a video","reasoning":"YouTube"} I chose Entertainment because the URL points at YouTube.`

	var choice models.CategoryChoice
	if err := json.Unmarshal([]byte(CleanModelJSON(raw)), &choice); err != nil {
		t.Fatalf("failed to parse with trailing prose: %v", err)
	}
	if choice.CategoryName != "Entertainment" {
		t.Errorf("expected Entertainment, got %q", choice.CategoryName)
	}
}

func TestCleanModelJSONLeadingProse(t *testing.T) {
	raw := `Sure! Here is the categorization: {"chosenCategoryName":"Work","summary":"s","reasoning":"r"}`

	var choice models.CategoryChoice
	if err := json.Unmarshal([]byte(CleanModelJSON(raw)), &choice); err != nil {
		t.Fatalf("failed to parse with leading prose: %v", err)
	}
	if choice.CategoryName != "Work" {
		t.Errorf("expected Work, got %q", choice.CategoryName)
	}
}

func TestCleanModelJSONNestedObjectsAndStrings(t *testing.T) {
	raw := `{"outer":{"inner":"has a \" quote and a } brace"},"n":1} trailing`

	got := CleanModelJSON(raw)
	want := `{"outer":{"inner":"has a \" quote and a } brace"},"n":1}`
	if got != want {
		t.Errorf("balanced-object extraction mishandled nesting:\n got %q\nwant %q", got, want)
	}
}

func TestCleanModelJSONNoObject(t *testing.T) {
	inputs := []string{"", "no json here", "```\nplain text\n```", "{never closed"}

	for _, input := range inputs {
		if got := CleanModelJSON(input); got != "" {
			t.Errorf("CleanModelJSON(%q) = %q, want empty", input, got)
		}
	}
}
