package models

import (
	"context"
	"time"
)

// RecategorizeItemType selects what an identifier means for bulk
// recategorization and cache invalidation.
type RecategorizeItemType string

const (
	ItemTypeApp     RecategorizeItemType = "app"
	ItemTypeWebsite RecategorizeItemType = "website"
)

// Categorization is the set of fields the pipeline writes back onto an event
// once a decision is made.
type Categorization struct {
	CategoryID    string
	Reasoning     string
	Summary       string
	CategorizedAt time.Time
}

// EventRepository is the persistence contract the pipeline needs for activity
// events. Schema and migrations live in the database package.
type EventRepository interface {
	Create(ctx context.Context, event *ActivityEvent) error
	GetByID(ctx context.Context, id string) (*ActivityEvent, error)
	ListByTimeRange(ctx context.Context, userID string, start, end time.Time) ([]ActivityEvent, error)
	UpdateDuration(ctx context.Context, id string, durationMS int64) error
	ApplyCategorization(ctx context.Context, id string, cat Categorization) error
	RecategorizeByIdentifier(ctx context.Context, userID, identifier string, itemType RecategorizeItemType, start, end time.Time, categoryID string) (int64, error)
	Delete(ctx context.Context, id string) error
}

// CategoryRepository manages the user's category list.
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	GetByID(ctx context.Context, id string) (*Category, error)
	ListByUser(ctx context.Context, userID string) ([]Category, error)
	Update(ctx context.Context, category *Category) error
	Archive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	EnsureDefaults(ctx context.Context, userID string) error
}

// SettingsRepository is a flat string-keyed settings table.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	GetBool(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key, value string) error
}

// UserRepository manages the single local user row.
type UserRepository interface {
	EnsureLocalUser(ctx context.Context, name, passwordHash string) (*User, error)
	GetLocal(ctx context.Context) (*User, error)
	SetGoals(ctx context.Context, userID, goals string) error
}
