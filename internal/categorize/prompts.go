package categorize

import (
	"fmt"
	"strings"

	"github.com/timearc/timearc/internal/models"
)

// Truncation bounds keep prompts inside a local model's context window. URL
// and content are the only unbounded inputs an activity carries.
const (
	maxPromptURLLength     = 150
	maxPromptContentLength = 7000
)

// buildCategorizationPrompt assembles the single user-role message for
// activity categorization: activity details, the user's category list, the
// user's goals, fixed rules of thumb, and a strict JSON-only instruction.
func buildCategorizationPrompt(details models.ActivityDetails, categories []models.Category, goals string) string {
	var b strings.Builder

	b.WriteString("Categorize this computer activity into exactly one of the user's categories.\n\n")

	b.WriteString("Activity:\n")
	fmt.Fprintf(&b, "- Application: %s\n", details.OwnerName)
	if details.Title != "" {
		fmt.Fprintf(&b, "- Window title: %s\n", details.Title)
	}
	if details.URL != "" {
		fmt.Fprintf(&b, "- URL: %s\n", truncate(details.URL, maxPromptURLLength))
	}
	if details.Browser != "" {
		fmt.Fprintf(&b, "- Browser: %s\n", details.Browser)
	}
	fmt.Fprintf(&b, "- Type: %s\n", details.Type)
	if details.Content != "" {
		fmt.Fprintf(&b, "- On-screen text: %s\n", truncate(details.Content, maxPromptContentLength))
	}

	b.WriteString("\nUser's categories:\n")
	for _, c := range categories {
		if c.Description != "" {
			fmt.Fprintf(&b, "- %s: %s\n", c.Name, c.Description)
		} else {
			fmt.Fprintf(&b, "- %s\n", c.Name)
		}
	}

	if goals != "" {
		fmt.Fprintf(&b, "\nUser's goals: %s\n", goals)
	}

	b.WriteString(`
Rules of thumb:
- Code editors, terminals, design tools, and office documents are usually work.
- github.com, stackoverflow.com, and issue trackers are usually work even in a browser.
- youtube.com is entertainment unless the title is clearly a technical tutorial.
- Social feeds (twitter/x, instagram, reddit, tiktok) are social/entertainment, not work.
- Chat and email apps are communication; during meetings they count as work-adjacent.
- When torn between work and entertainment, let the window title and URL decide.

Respond with ONLY a JSON object of this exact shape, no markdown fences, no extra text:
{"chosenCategoryName": "<one of the category names above>", "summary": "<one short line describing the activity>", "reasoning": "<one short line explaining the choice>"}
`)

	return b.String()
}

// buildSummarizePrompt asks for a one-line summary of an activity block.
func buildSummarizePrompt(text string) string {
	return fmt.Sprintf(`Summarize the following computer activity in one short line (at most 12 words). Respond with only the summary, no quotes, no extra text.

%s`, truncate(text, maxPromptContentLength))
}

// buildTitleInformativePrompt asks whether a window title says anything useful
// about what the user was doing.
func buildTitleInformativePrompt(title string) string {
	return fmt.Sprintf(`Does this window title describe what the user is actually doing, as opposed to a generic application name or an empty placeholder?

Title: %q

Respond with ONLY a JSON object, no extra text: {"informative": true} or {"informative": false}`, title)
}

// buildTitlePrompt asks for a human-readable title for an activity.
func buildTitlePrompt(details models.ActivityDetails) string {
	var b strings.Builder
	b.WriteString("Write a short, human-readable title (at most 8 words) for this computer activity. Respond with only the title, no quotes.\n\n")
	fmt.Fprintf(&b, "Application: %s\n", details.OwnerName)
	if details.Title != "" {
		fmt.Fprintf(&b, "Window title: %s\n", details.Title)
	}
	if details.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", truncate(details.URL, maxPromptURLLength))
	}
	return b.String()
}

// buildEmojiPrompt asks for a single emoji for a category.
func buildEmojiPrompt(name, description string) string {
	return fmt.Sprintf(`Suggest a single emoji for a productivity category named %q (%s). Respond with ONLY a JSON object, no extra text: {"emoji": "<one emoji>"}`, name, description)
}

// buildSuggestionsPrompt asks for a full category set derived from the user's
// goals, used during onboarding.
func buildSuggestionsPrompt(goals string) string {
	return fmt.Sprintf(`A user is setting up a desktop time tracker and described their goals as:

%s

Propose 4 to 6 productivity categories tailored to those goals. Always include one category for unclassifiable activity. Respond with ONLY a JSON object of this exact shape, no markdown fences, no extra text:
{"categories": [{"name": "...", "description": "...", "color": "#RRGGBB", "emoji": "<one emoji>", "productive": true}]}`, goals)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
