package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is a single versioned schema change. Migrations are compiled into
// the binary so the desktop daemon is self-contained.
type migration struct {
	version string
	sql     string
}

var migrations = []migration{
	{
		version: "001_initial_schema",
		sql: `
			CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				goals TEXT NOT NULL DEFAULT '',
				password_hash TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);

			CREATE TABLE IF NOT EXISTS categories (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id),
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				color TEXT NOT NULL DEFAULT '',
				emoji TEXT NOT NULL DEFAULT '',
				productive INTEGER NOT NULL DEFAULT 0,
				is_default INTEGER NOT NULL DEFAULT 0,
				archived INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);

			CREATE TABLE IF NOT EXISTS activity_events (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id),
				owner_name TEXT NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				url TEXT NOT NULL DEFAULT '',
				content TEXT NOT NULL DEFAULT '',
				type TEXT NOT NULL DEFAULT 'normal',
				browser TEXT NOT NULL DEFAULT '',
				timestamp TIMESTAMP NOT NULL,
				duration_ms INTEGER NOT NULL DEFAULT 0,
				category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
				reasoning TEXT NOT NULL DEFAULT '',
				summary TEXT NOT NULL DEFAULT '',
				categorized_at TIMESTAMP,
				old_category_id TEXT,
				old_reasoning TEXT NOT NULL DEFAULT '',
				old_summary TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_events_user_timestamp ON activity_events(user_id, timestamp);
			CREATE INDEX IF NOT EXISTS idx_events_owner_name ON activity_events(owner_name);
			CREATE INDEX IF NOT EXISTS idx_events_url ON activity_events(url);
			CREATE INDEX IF NOT EXISTS idx_categories_user ON categories(user_id);

			CREATE TABLE IF NOT EXISTS settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);
		`,
	},
}

// RunMigrations applies all pending schema migrations in order.
func RunMigrations(db *sql.DB, logger *slog.Logger) error {
	logger.Info("checking for pending database migrations")

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	applied := make(map[string]bool)
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}

	pendingCount := 0
	for _, m := range migrations {
		if applied[m.version] {
			continue
		}

		logger.Info("applying migration", "version", m.version)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %s: %w", m.version, err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s failed: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.version, err)
		}

		pendingCount++
	}

	if pendingCount > 0 {
		logger.Info("migrations applied", "count", pendingCount)
	} else {
		logger.Info("database schema up to date")
	}

	return nil
}
