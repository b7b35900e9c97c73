package models

import (
	"time"
)

// Category is a user-defined productivity bucket. Names are unique per user in
// practice but not enforced; events reference categories by id.
type Category struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	Emoji       string    `json:"emoji,omitempty"`
	Productive  bool      `json:"productive"`
	IsDefault   bool      `json:"is_default"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategorySuggestion is an AI-proposed category generated from the user's
// free-text goals during onboarding. Nothing is persisted until the user
// accepts a suggestion.
type CategorySuggestion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Emoji       string `json:"emoji"`
	Productive  bool   `json:"productive"`
}

// DefaultCategoryTemplates returns the fixed template set used to seed a new
// user's category list at first run.
func DefaultCategoryTemplates() []Category {
	return []Category{
		{Name: "Work", Description: "Professional tasks, coding, documents, and meetings", Color: "#3B82F6", Emoji: "💼", Productive: true, IsDefault: true},
		{Name: "Communication", Description: "Email, chat, and video calls", Color: "#10B981", Emoji: "💬", Productive: true, IsDefault: true},
		{Name: "Learning", Description: "Courses, documentation, and reading technical material", Color: "#8B5CF6", Emoji: "📚", Productive: true, IsDefault: true},
		{Name: "Entertainment", Description: "Video, music, games, and casual browsing", Color: "#F59E0B", Emoji: "🎬", Productive: false, IsDefault: true},
		{Name: "Social Media", Description: "Social networks and feeds", Color: "#EF4444", Emoji: "📱", Productive: false, IsDefault: true},
		{Name: "Uncategorized", Description: "Activity that could not be classified", Color: "#6B7280", Emoji: "❓", Productive: false, IsDefault: true},
	}
}
