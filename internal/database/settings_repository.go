package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// SettingsRepository implements models.SettingsRepository as a flat
// string-keyed table. Missing keys read as empty / false rather than erroring
// so callers can treat unset settings as disabled features.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the value for a key, or "" when the key is not set.
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return value, nil
}

// GetBool returns a boolean setting. Unset or unparseable values read as false.
func (r *SettingsRepository) GetBool(ctx context.Context, key string) (bool, error) {
	value, err := r.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if value == "" {
		return false, nil
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, nil
	}
	return parsed, nil
}

// Set writes a key, overwriting any existing value.
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set setting %q: %w", key, err)
	}
	return nil
}

// EnsureDefaults writes any of the given defaults whose key is not set yet.
func (r *SettingsRepository) EnsureDefaults(ctx context.Context, defaults map[string]string) error {
	for key, value := range defaults {
		existing, err := r.Get(ctx, key)
		if err != nil {
			return err
		}
		if existing != "" {
			continue
		}
		if err := r.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}
