package categorize

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/timearc/timearc/internal/models"
)

// RuleEngine is the deterministic, always-available fallback categorizer. It
// scores a fixed table of archetypes against an activity's app name, URL
// domain, and title/content keywords, then maps the winning archetype onto
// one of the user's actual categories.
type RuleEngine struct {
	archetypes []archetype
}

// archetype is a built-in rule pattern, distinct from user-defined categories.
type archetype struct {
	name         string
	appNames     []string
	domains      []string
	keywords     []string
	defaultNames []string
}

// minArchetypeScore is the threshold below which an activity is treated as
// unclassifiable by rules.
const minArchetypeScore = 2

// NewRuleEngine creates a rule engine with the built-in archetype table.
func NewRuleEngine() *RuleEngine {
	return &RuleEngine{archetypes: buildArchetypes()}
}

func buildArchetypes() []archetype {
	return []archetype{
		{
			name:         "work",
			appNames:     []string{"vscode", "visual studio code", "code", "intellij", "goland", "pycharm", "xcode", "terminal", "iterm", "excel", "word", "powerpoint", "figma", "notion", "obsidian", "postman", "docker", "tableplus"},
			domains:      []string{"github.com", "gitlab.com", "bitbucket.org", "stackoverflow.com", "atlassian.net", "jira.com", "linear.app", "docs.google.com", "sheets.google.com", "aws.amazon.com", "console.cloud.google.com", "localhost"},
			keywords:     []string{"pull request", "merge request", "issue", "ticket", "sprint", "deploy", "debug", "refactor", "documentation", "spreadsheet", "proposal", "invoice"},
			defaultNames: []string{"Work", "Productive", "Business"},
		},
		{
			name:         "communication",
			appNames:     []string{"slack", "discord", "zoom", "teams", "outlook", "mail", "thunderbird", "telegram", "whatsapp", "signal", "messages"},
			domains:      []string{"mail.google.com", "outlook.office.com", "slack.com", "meet.google.com", "zoom.us", "teams.microsoft.com"},
			keywords:     []string{"inbox", "meeting", "call", "reply", "message", "email", "standup"},
			defaultNames: []string{"Communication", "Meetings", "Email", "Work"},
		},
		{
			name:         "entertainment",
			appNames:     []string{"spotify", "vlc", "netflix", "steam", "epic games", "twitch", "plex", "quicktime"},
			domains:      []string{"youtube.com", "netflix.com", "twitch.tv", "hulu.com", "disneyplus.com", "spotify.com", "soundcloud.com", "hbomax.com", "primevideo.com"},
			keywords:     []string{"watch", "episode", "trailer", "playlist", "stream", "gaming", "music video"},
			defaultNames: []string{"Entertainment", "Leisure", "Fun"},
		},
		{
			name:         "social",
			appNames:     []string{"twitter", "instagram", "facebook", "tiktok", "reddit"},
			domains:      []string{"twitter.com", "x.com", "instagram.com", "facebook.com", "tiktok.com", "reddit.com", "linkedin.com", "news.ycombinator.com"},
			keywords:     []string{"feed", "follower", "timeline", "trending", "comments", "upvote"},
			defaultNames: []string{"Social Media", "Social", "Entertainment"},
		},
		{
			name:         "shopping",
			appNames:     []string{"amazon"},
			domains:      []string{"amazon.com", "ebay.com", "etsy.com", "aliexpress.com", "walmart.com", "bestbuy.com", "shopify.com"},
			keywords:     []string{"cart", "checkout", "order", "shipping", "price", "deal", "wishlist"},
			defaultNames: []string{"Shopping", "Personal", "Errands"},
		},
		{
			name:         "learning",
			appNames:     []string{"anki", "kindle", "books", "preview"},
			domains:      []string{"coursera.org", "udemy.com", "khanacademy.org", "wikipedia.org", "medium.com", "arxiv.org", "developer.mozilla.org", "go.dev", "pkg.go.dev"},
			keywords:     []string{"tutorial", "course", "lesson", "chapter", "documentation", "how to", "guide", "paper"},
			defaultNames: []string{"Learning", "Education", "Work"},
		},
	}
}

// Categorize scores the archetype table against the activity and resolves the
// winner to one of the user's categories. Returns nil only when the user has
// zero categories.
func (e *RuleEngine) Categorize(details models.ActivityDetails, categories []models.Category) *models.CategoryChoice {
	if len(categories) == 0 {
		return nil
	}

	winner, score, signal := e.bestArchetype(details)

	archetypeName := winner
	if score < minArchetypeScore {
		archetypeName = "uncategorized"
		signal = "no strong signal"
	}

	category := e.resolveCategory(archetypeName, categories)
	if category == nil {
		category = &categories[0]
	}

	return &models.CategoryChoice{
		CategoryName: category.Name,
		Summary:      summarizeActivity(details),
		Reasoning:    fmt.Sprintf("Matched %q by %s", archetypeName, signal),
	}
}

// bestArchetype returns the highest-scoring archetype, its score, and the
// strongest matching signal for the reasoning text.
func (e *RuleEngine) bestArchetype(details models.ActivityDetails) (string, int, string) {
	app := strings.ToLower(details.OwnerName)
	text := strings.ToLower(details.Title + " " + details.Content)
	domain := strings.ToLower(extractDomain(details.URL))

	bestName := ""
	bestScore := 0
	bestSignal := "no signal"

	for _, a := range e.archetypes {
		score := 0
		signal := ""

		for _, name := range a.appNames {
			if strings.Contains(app, name) {
				score += 3
				signal = fmt.Sprintf("application name (%s)", details.OwnerName)
				break
			}
		}

		if domain != "" {
			for _, d := range a.domains {
				if strings.Contains(domain, d) {
					score += 3
					if signal == "" {
						signal = fmt.Sprintf("URL domain (%s)", domain)
					}
					break
				}
			}
		}

		for _, kw := range a.keywords {
			if strings.Contains(text, kw) {
				score++
				if signal == "" {
					signal = "window content"
				}
				break
			}
		}

		if score > bestScore {
			bestName = a.name
			bestScore = score
			bestSignal = signal
		}
	}

	return bestName, bestScore, bestSignal
}

// resolveCategory maps an archetype onto the user's category list: exact
// case-insensitive name match, then substring match against name or
// description, then the archetype's list of likely default names, then nil
// (caller falls back to the first category).
func (e *RuleEngine) resolveCategory(archetypeName string, categories []models.Category) *models.Category {
	lowered := strings.ToLower(archetypeName)

	for i := range categories {
		if strings.EqualFold(categories[i].Name, archetypeName) {
			return &categories[i]
		}
	}

	for i := range categories {
		name := strings.ToLower(categories[i].Name)
		desc := strings.ToLower(categories[i].Description)
		if strings.Contains(name, lowered) || strings.Contains(desc, lowered) {
			return &categories[i]
		}
	}

	for _, a := range e.archetypes {
		if a.name != archetypeName {
			continue
		}
		for _, def := range a.defaultNames {
			for i := range categories {
				if strings.EqualFold(categories[i].Name, def) {
					return &categories[i]
				}
			}
		}
	}

	return nil
}

// summarizeActivity derives a one-line summary without any model call: a
// non-trivial window title, else the browsed domain, else the app name.
func summarizeActivity(details models.ActivityDetails) string {
	if title := strings.TrimSpace(details.Title); len(title) > 3 {
		return title
	}
	if domain := extractDomain(details.URL); domain != "" {
		return fmt.Sprintf("Browsing %s", domain)
	}
	if details.OwnerName != "" {
		return fmt.Sprintf("Using %s", details.OwnerName)
	}
	return "Unknown activity"
}

// extractDomain returns the hostname of a URL, or "" when the URL is absent
// or unparseable. A malformed URL fails closed as "no domain match".
func extractDomain(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}

	host := parsed.Host
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.TrimPrefix(host, "www.")
}
