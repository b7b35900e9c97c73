package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/timearc/timearc/internal/models"
)

// UserRepository implements models.UserRepository. The application is
// single-user; the table exists so ownership is explicit and the local API
// has credentials to check.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// EnsureLocalUser returns the local user, creating it on first run.
func (r *UserRepository) EnsureLocalUser(ctx context.Context, name, passwordHash string) (*models.User, error) {
	existing, err := r.GetLocal(ctx)
	if err == nil {
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, goals, password_hash, created_at, updated_at)
		VALUES (?, ?, '', ?, ?, ?)
	`, user.ID, user.Name, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create local user: %w", err)
	}

	return user, nil
}

// GetLocal returns the single local user row. Returns sql.ErrNoRows when the
// user has not been created yet.
func (r *UserRepository) GetLocal(ctx context.Context) (*models.User, error) {
	var user models.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, goals, password_hash, created_at, updated_at
		FROM users ORDER BY created_at ASC LIMIT 1
	`).Scan(&user.ID, &user.Name, &user.Goals, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get local user: %w", err)
	}
	return &user, nil
}

// SetGoals updates the user's free-text goals used in AI prompts.
func (r *UserRepository) SetGoals(ctx context.Context, userID, goals string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE users SET goals = ?, updated_at = ? WHERE id = ?",
		goals, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update goals: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check goals update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}

	return nil
}
