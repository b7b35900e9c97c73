package models

import (
	"time"
)

// ActivityEvent represents one recorded interval of a foreground
// application/window/URL being active.
type ActivityEvent struct {
	ID            string       `json:"id"`
	UserID        string       `json:"user_id"`
	OwnerName     string       `json:"owner_name"`
	Title         string       `json:"title,omitempty"`
	URL           string       `json:"url,omitempty"`
	Content       string       `json:"content,omitempty"`
	Type          ActivityType `json:"type"`
	Browser       string       `json:"browser,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
	DurationMS    int64        `json:"duration_ms"`
	CategoryID    *string      `json:"category_id,omitempty"`
	Reasoning     string       `json:"reasoning,omitempty"`
	Summary       string       `json:"summary,omitempty"`
	CategorizedAt *time.Time   `json:"categorized_at,omitempty"`

	// Snapshot of the previous assignment, preserved across
	// recategorization for audit/undo.
	OldCategoryID *string `json:"old_category_id,omitempty"`
	OldReasoning  string  `json:"old_reasoning,omitempty"`
	OldSummary    string  `json:"old_summary,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActivityType distinguishes how an event entered the system.
type ActivityType string

const (
	ActivityTypeNormal   ActivityType = "normal"   // Observed window change
	ActivityTypeManual   ActivityType = "manual"   // User-entered block
	ActivityTypeCalendar ActivityType = "calendar" // Imported calendar entry
)

// ActivityDetails is the categorization input derived from an event (or from a
// raw observation before the event exists). It is never persisted.
type ActivityDetails struct {
	OwnerName string       `json:"owner_name"`
	Title     string       `json:"title,omitempty"`
	URL       string       `json:"url,omitempty"`
	Content   string       `json:"content,omitempty"`
	Type      ActivityType `json:"type"`
	Browser   string       `json:"browser,omitempty"`
}

// DetailsFromEvent projects an event onto the categorization input.
func DetailsFromEvent(event ActivityEvent) ActivityDetails {
	return ActivityDetails{
		OwnerName: event.OwnerName,
		Title:     event.Title,
		URL:       event.URL,
		Content:   event.Content,
		Type:      event.Type,
		Browser:   event.Browser,
	}
}

// CategoryChoice is the categorization output. The chosen category is a name,
// not an id: the AI and the rule engine only know names, so the pipeline
// resolves the name against the user's live category list before writing.
type CategoryChoice struct {
	CategoryName string `json:"chosenCategoryName"`
	Summary      string `json:"summary"`
	Reasoning    string `json:"reasoning"`
}

// Observation is a single foreground-window change delivered by the native
// window observer. The stream is at-least-once and best-effort: no sequence
// numbers, no replay.
type Observation struct {
	WindowID  string       `json:"window_id"`
	OwnerName string       `json:"owner_name"`
	Title     string       `json:"title,omitempty"`
	URL       string       `json:"url,omitempty"`
	Content   string       `json:"content,omitempty"`
	Type      ActivityType `json:"type,omitempty"`
	Browser   string       `json:"browser,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}
