package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/timearc/timearc/internal/models"
)

// CategoryRepository implements models.CategoryRepository over SQLite.
type CategoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const categoryColumns = `id, user_id, name, description, color, emoji, productive,
	is_default, archived, created_at, updated_at`

// Create inserts a new category, generating an id if the category has none.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now

	query := `
		INSERT INTO categories (
			id, user_id, name, description, color, emoji, productive,
			is_default, archived, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		category.ID,
		category.UserID,
		category.Name,
		category.Description,
		category.Color,
		category.Emoji,
		category.Productive,
		category.IsDefault,
		category.Archived,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}

	return nil
}

// GetByID retrieves a category by its id.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	query := fmt.Sprintf("SELECT %s FROM categories WHERE id = ?", categoryColumns)

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("category not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return category, nil
}

// ListByUser returns a user's non-archived categories, oldest first.
func (r *CategoryRepository) ListByUser(ctx context.Context, userID string) ([]models.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM categories
		WHERE user_id = ? AND archived = 0
		ORDER BY created_at ASC
	`, categoryColumns)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}

	return categories, nil
}

// Update rewrites a category's mutable fields.
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	category.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE categories SET
			name = ?, description = ?, color = ?, emoji = ?,
			productive = ?, archived = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		category.Name,
		category.Description,
		category.Color,
		category.Emoji,
		category.Productive,
		category.Archived,
		category.UpdatedAt,
		category.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category not found: %s", category.ID)
	}

	return nil
}

// Archive soft-deletes a category, preserving historical event references.
func (r *CategoryRepository) Archive(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE categories SET archived = 1, updated_at = ? WHERE id = ?",
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to archive category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check archive result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category not found: %s", id)
	}

	return nil
}

// Delete hard-deletes a category. Events referencing it fall back to NULL via
// the foreign key's ON DELETE SET NULL.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// EnsureDefaults seeds the fixed template set for a user that has no
// categories yet. Safe to call on every startup.
func (r *CategoryRepository) EnsureDefaults(ctx context.Context, userID string) error {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, template := range models.DefaultCategoryTemplates() {
		category := template
		category.UserID = userID
		if err := r.Create(ctx, &category); err != nil {
			return fmt.Errorf("failed to seed default category %q: %w", category.Name, err)
		}
	}

	return nil
}

func scanCategory(s scanner) (*models.Category, error) {
	var category models.Category

	err := s.Scan(
		&category.ID,
		&category.UserID,
		&category.Name,
		&category.Description,
		&category.Color,
		&category.Emoji,
		&category.Productive,
		&category.IsDefault,
		&category.Archived,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &category, nil
}
