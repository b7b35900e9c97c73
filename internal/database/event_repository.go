package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/timearc/timearc/internal/models"
)

// EventRepository implements models.EventRepository over SQLite.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new activity event repository.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, user_id, owner_name, title, url, content, type, browser,
	timestamp, duration_ms, category_id, reasoning, summary, categorized_at,
	old_category_id, old_reasoning, old_summary, created_at, updated_at`

// Create inserts a new event. An id is generated if the event has none, and
// the event is returned with id and bookkeeping timestamps populated.
func (r *EventRepository) Create(ctx context.Context, event *models.ActivityEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Type == "" {
		event.Type = models.ActivityTypeNormal
	}

	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	query := `
		INSERT INTO activity_events (
			id, user_id, owner_name, title, url, content, type, browser,
			timestamp, duration_ms, category_id, reasoning, summary, categorized_at,
			old_category_id, old_reasoning, old_summary, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.UserID,
		event.OwnerName,
		event.Title,
		event.URL,
		event.Content,
		string(event.Type),
		event.Browser,
		event.Timestamp.UTC(),
		event.DurationMS,
		event.CategoryID,
		event.Reasoning,
		event.Summary,
		event.CategorizedAt,
		event.OldCategoryID,
		event.OldReasoning,
		event.OldSummary,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

// GetByID retrieves an event by its id.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.ActivityEvent, error) {
	query := fmt.Sprintf("SELECT %s FROM activity_events WHERE id = ?", eventColumns)

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("event not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

// ListByTimeRange returns a user's events whose start timestamp falls inside
// [start, end), oldest first.
func (r *EventRepository) ListByTimeRange(ctx context.Context, userID string, start, end time.Time) ([]models.ActivityEvent, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM activity_events
		WHERE user_id = ? AND timestamp >= ? AND timestamp < ?
		ORDER BY timestamp ASC
	`, eventColumns)

	rows, err := r.db.QueryContext(ctx, query, userID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.ActivityEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	return events, nil
}

// UpdateDuration sets an event's duration while its interval is still open.
func (r *EventRepository) UpdateDuration(ctx context.Context, id string, durationMS int64) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE activity_events SET duration_ms = ?, updated_at = ? WHERE id = ?",
		durationMS, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update event duration: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("event not found: %s", id)
	}

	return nil
}

// ApplyCategorization writes a categorization decision onto an event,
// snapshotting the previous assignment into the old_* fields.
func (r *EventRepository) ApplyCategorization(ctx context.Context, id string, cat models.Categorization) error {
	query := `
		UPDATE activity_events SET
			old_category_id = category_id,
			old_reasoning = reasoning,
			old_summary = summary,
			category_id = ?,
			reasoning = ?,
			summary = ?,
			categorized_at = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		cat.CategoryID, cat.Reasoning, cat.Summary, cat.CategorizedAt.UTC(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to apply categorization: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check categorization result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("event not found: %s", id)
	}

	return nil
}

// RecategorizeByIdentifier bulk-updates the category of all of a user's events
// matching an app name or URL within a time range. Previous assignments are
// snapshotted into the old_* fields. Returns the number of rows affected.
func (r *EventRepository) RecategorizeByIdentifier(ctx context.Context, userID, identifier string, itemType models.RecategorizeItemType, start, end time.Time, categoryID string) (int64, error) {
	var matchClause string
	switch itemType {
	case models.ItemTypeApp:
		matchClause = "owner_name = ?"
	case models.ItemTypeWebsite:
		matchClause = "url LIKE '%' || ? || '%'"
	default:
		return 0, fmt.Errorf("unknown item type: %s", itemType)
	}

	now := time.Now().UTC()
	query := fmt.Sprintf(`
		UPDATE activity_events SET
			old_category_id = category_id,
			old_reasoning = reasoning,
			old_summary = summary,
			category_id = ?,
			categorized_at = ?,
			updated_at = ?
		WHERE user_id = ? AND %s AND timestamp >= ? AND timestamp < ?
	`, matchClause)

	result, err := r.db.ExecContext(ctx, query,
		categoryID, now, now, userID, identifier, start.UTC(), end.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to recategorize events: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count recategorized events: %w", err)
	}

	return affected, nil
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM activity_events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(s scanner) (*models.ActivityEvent, error) {
	var event models.ActivityEvent
	var eventType string
	var categoryID, oldCategoryID sql.NullString
	var categorizedAt sql.NullTime

	err := s.Scan(
		&event.ID,
		&event.UserID,
		&event.OwnerName,
		&event.Title,
		&event.URL,
		&event.Content,
		&eventType,
		&event.Browser,
		&event.Timestamp,
		&event.DurationMS,
		&categoryID,
		&event.Reasoning,
		&event.Summary,
		&categorizedAt,
		&oldCategoryID,
		&event.OldReasoning,
		&event.OldSummary,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Type = models.ActivityType(eventType)
	if categoryID.Valid {
		event.CategoryID = &categoryID.String
	}
	if oldCategoryID.Valid {
		event.OldCategoryID = &oldCategoryID.String
	}
	if categorizedAt.Valid {
		t := categorizedAt.Time
		event.CategorizedAt = &t
	}

	return &event, nil
}
