package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/superlists/superlists/internal/models"
)

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, created_at FROM users WHERE email = ?", email,
	).Scan(&user.ID, &user.Email, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetOrCreateUser returns the user with the given email, creating the
// account if it does not exist yet. The conditional insert makes concurrent
// calls with the same email converge on a single row.
func (s *SQLiteStore) GetOrCreateUser(ctx context.Context, email string) (*models.User, error) {
	candidate := models.NewUser(email)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, created_at) VALUES (?, ?, ?) ON CONFLICT(email) DO NOTHING",
		candidate.ID, candidate.Email, candidate.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s missing after upsert", email)
	}
	return user, nil
}

// getUserByID retrieves a user by their ID.
func (s *SQLiteStore) getUserByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, created_at FROM users WHERE id = ?", id,
	).Scan(&user.ID, &user.Email, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}
