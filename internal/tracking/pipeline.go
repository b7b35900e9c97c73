package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/timearc/timearc/internal/categorize"
	"github.com/timearc/timearc/internal/metrics"
	"github.com/timearc/timearc/internal/models"
)

// Deps collects the pipeline's collaborators. The queue and cache are owned
// instances created at startup, not package globals.
type Deps struct {
	Events     models.EventRepository
	Categories models.CategoryRepository
	Settings   models.SettingsRepository
	Users      models.UserRepository

	AI    *categorize.AICategorizer
	Rules *categorize.RuleEngine
	Cache *categorize.ActivityCache
	Queue *categorize.RequestQueue

	Metrics *metrics.Collector
	Logger  *slog.Logger
}

// Pipeline orchestrates the life of an activity event: persist on window
// change, update duration while foreground, categorize asynchronously, and
// support manual and bulk recategorization.
type Pipeline struct {
	events     models.EventRepository
	categories models.CategoryRepository
	settings   models.SettingsRepository
	users      models.UserRepository

	ai    *categorize.AICategorizer
	rules *categorize.RuleEngine
	cache *categorize.ActivityCache
	queue *categorize.RequestQueue

	metrics *metrics.Collector
	logger  *slog.Logger

	mu     sync.Mutex
	active map[string]string // window id -> event id
}

// NewPipeline creates a pipeline over the given collaborators.
func NewPipeline(deps Deps) *Pipeline {
	return &Pipeline{
		events:     deps.Events,
		categories: deps.Categories,
		settings:   deps.Settings,
		users:      deps.Users,
		ai:         deps.AI,
		rules:      deps.Rules,
		cache:      deps.Cache,
		queue:      deps.Queue,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		active:     make(map[string]string),
	}
}

// ProcessEvent persists a new activity event for an observed window change and
// enqueues its categorization. The returned event's category fields are
// provisional: categorization is fire-and-forget, and callers observe the
// result via a later read.
func (p *Pipeline) ProcessEvent(ctx context.Context, userID string, obs models.Observation) (*models.ActivityEvent, error) {
	event := &models.ActivityEvent{
		ID:        uuid.New().String(),
		UserID:    userID,
		OwnerName: obs.OwnerName,
		Title:     obs.Title,
		URL:       obs.URL,
		Content:   obs.Content,
		Type:      obs.Type,
		Browser:   obs.Browser,
		Timestamp: obs.Timestamp,
	}
	if event.Type == "" {
		event.Type = models.ActivityTypeNormal
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if err := p.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record event: %w", err)
	}
	p.metrics.ObserveEventTracked()

	if obs.WindowID != "" {
		p.mu.Lock()
		p.active[obs.WindowID] = event.ID
		p.mu.Unlock()
	}

	if p.categorizationEnabled(ctx) {
		eventID := event.ID
		p.queue.Add(eventID, func(jobCtx context.Context) error {
			return p.categorizeEvent(jobCtx, eventID)
		})
	}

	return event, nil
}

// UpdateDuration records the current duration of a still-open window interval.
// A window id that is no longer active is a no-op, not an error.
func (p *Pipeline) UpdateDuration(ctx context.Context, windowID string, durationMS int64) error {
	p.mu.Lock()
	eventID, ok := p.active[windowID]
	p.mu.Unlock()
	if !ok {
		return nil
	}

	return p.events.UpdateDuration(ctx, eventID, durationMS)
}

// EndWindowEvent closes a window interval, recording its final duration when
// one is given. An in-flight categorization job for the event is allowed to
// complete; closing the window does not cancel it.
func (p *Pipeline) EndWindowEvent(ctx context.Context, windowID string, durationMS int64) error {
	p.mu.Lock()
	eventID, ok := p.active[windowID]
	delete(p.active, windowID)
	p.mu.Unlock()
	if !ok {
		return nil
	}

	if durationMS > 0 {
		return p.events.UpdateDuration(ctx, eventID, durationMS)
	}
	return nil
}

// ActiveCount returns the number of currently open window intervals.
func (p *Pipeline) ActiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}

// categorizeEvent is the queued job body: decide a category for the event via
// cache, AI, or rules, then persist. Every failure path degrades to "stays
// uncategorized" rather than an error surfacing beyond the queue's log line.
func (p *Pipeline) categorizeEvent(ctx context.Context, eventID string) error {
	event, err := p.events.GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to load event for categorization: %w", err)
	}

	categories, err := p.categories.ListByUser(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	if len(categories) == 0 {
		p.logger.Debug("no categories configured, skipping categorization", "event_id", eventID)
		return nil
	}

	details := models.DetailsFromEvent(*event)

	var choice *models.CategoryChoice
	source := metrics.SourceCache

	if cached, hit := p.cache.Get(details); hit {
		p.metrics.ObserveCacheLookup(true)
		choice = &cached
	} else {
		p.metrics.ObserveCacheLookup(false)

		choice = p.ai.Categorize(ctx, details, categories, p.userGoals(ctx))
		source = metrics.SourceAI

		if choice == nil {
			choice = p.rules.Categorize(details, categories)
			source = metrics.SourceRules
		}
	}

	if choice == nil {
		p.logger.Warn("no categorization decision for event", "event_id", eventID)
		p.metrics.ObserveCategorization(source, metrics.OutcomeAborted)
		return nil
	}

	// The AI call is a suspension point during which the user may have
	// renamed or archived categories. Resolve the chosen name against a
	// fresh list just before the write.
	fresh, err := p.categories.ListByUser(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("failed to reload categories: %w", err)
	}
	category := resolveCategoryName(choice.CategoryName, fresh)
	if category == nil {
		p.logger.Warn("chosen category no longer exists, leaving event uncategorized",
			"event_id", eventID, "category_name", choice.CategoryName)
		p.metrics.ObserveCategorization(source, metrics.OutcomeAborted)
		return nil
	}

	err = p.events.ApplyCategorization(ctx, eventID, models.Categorization{
		CategoryID:    category.ID,
		Reasoning:     choice.Reasoning,
		Summary:       choice.Summary,
		CategorizedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to persist categorization: %w", err)
	}

	p.metrics.ObserveCategorization(source, metrics.OutcomeApplied)
	p.logger.Debug("event categorized",
		"event_id", eventID, "category", category.Name, "source", source)
	return nil
}

// RecategorizeEvent applies a user-chosen category to a single event,
// snapshotting the previous assignment. Unlike background categorization,
// failures here surface to the caller.
func (p *Pipeline) RecategorizeEvent(ctx context.Context, eventID, categoryID string) (*models.ActivityEvent, error) {
	event, err := p.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	category, err := p.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category.UserID != event.UserID {
		return nil, fmt.Errorf("category %s does not belong to the event's user", categoryID)
	}

	err = p.events.ApplyCategorization(ctx, eventID, models.Categorization{
		CategoryID:    category.ID,
		Reasoning:     "Manually set by user",
		Summary:       event.Summary,
		CategorizedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	return p.events.GetByID(ctx, eventID)
}

// RecategorizeEventsByIdentifier reassigns every event matching an app name or
// URL fragment within a time range, then invalidates matching cache entries so
// future events with that identifier are categorized fresh. Returns the number
// of events updated.
func (p *Pipeline) RecategorizeEventsByIdentifier(ctx context.Context, userID, identifier string, itemType models.RecategorizeItemType, start, end time.Time, categoryID string) (int64, error) {
	category, err := p.categories.GetByID(ctx, categoryID)
	if err != nil {
		return 0, err
	}
	if category.UserID != userID {
		return 0, fmt.Errorf("category %s does not belong to user %s", categoryID, userID)
	}

	count, err := p.events.RecategorizeByIdentifier(ctx, userID, identifier, itemType, start, end, categoryID)
	if err != nil {
		return 0, err
	}

	removed := p.cache.Invalidate(identifier, itemType)
	p.logger.Info("bulk recategorization applied",
		"identifier", identifier, "item_type", string(itemType),
		"events_updated", count, "cache_entries_invalidated", removed)

	return count, nil
}

// ClearQueue drops all queued (not yet running) categorization jobs.
func (p *Pipeline) ClearQueue() {
	p.queue.Clear()
}

// QueuePending returns the number of categorization jobs waiting for a slot.
func (p *Pipeline) QueuePending() int {
	return p.queue.PendingLen()
}

// QueueRunning returns the number of categorization jobs currently executing.
func (p *Pipeline) QueueRunning() int {
	return p.queue.Running()
}

// Wait blocks until all accepted categorization jobs have finished. Used at
// shutdown and by tests.
func (p *Pipeline) Wait() {
	p.queue.Wait()
}

func (p *Pipeline) categorizationEnabled(ctx context.Context) bool {
	enabled, err := p.settings.GetBool(ctx, models.SettingCategorizationEnabled)
	if err != nil {
		p.logger.Warn("failed to read categorization_enabled setting", "error", err)
		return false
	}
	return enabled
}

// userGoals reads the local user's goals for prompt context. Best-effort: a
// missing user record just means no goals.
func (p *Pipeline) userGoals(ctx context.Context) string {
	user, err := p.users.GetLocal(ctx)
	if err != nil || user == nil {
		return ""
	}
	return user.Goals
}

// resolveCategoryName matches a chosen category name against the live list by
// case-insensitive exact comparison. Fuzzy matching happens earlier, inside
// the rule engine; at the write step the name either resolves or the write is
// aborted.
func resolveCategoryName(name string, categories []models.Category) *models.Category {
	for i := range categories {
		if strings.EqualFold(categories[i].Name, name) {
			return &categories[i]
		}
	}
	return nil
}
