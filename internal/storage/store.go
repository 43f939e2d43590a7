// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/superlists/superlists/internal/models"
)

// Store defines the interface for list and user storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateList atomically creates a list and its first item. The list is
	// persisted with the given owner (nil for an anonymous list). Returns
	// models.ErrEmptyItem if firstItemText is empty; in that case nothing
	// is persisted.
	CreateList(ctx context.Context, firstItemText string, owner *models.User) (*models.List, error)

	// AddItem appends an item to an existing list. Returns
	// models.ErrEmptyItem or models.ErrDuplicateItem on validation failure,
	// models.ErrListNotFound if the list does not exist. No partial write
	// occurs on failure. Emptiness is checked before duplication.
	AddItem(ctx context.Context, listID, text string) (*models.Item, error)

	// GetList retrieves a list by ID with its owner, sharees and items
	// (ordered by creation). Returns models.ErrListNotFound on miss.
	GetList(ctx context.Context, id string) (*models.List, error)

	// ListsForUser returns the lists the user owns or has been granted
	// access to via sharing.
	ListsForUser(ctx context.Context, user *models.User) ([]*models.List, error)

	// DeleteList removes a list and, by cascade, its items and shares.
	DeleteList(ctx context.Context, id string) error

	// ShareList grants the user view access to the list. Idempotent:
	// sharing twice with the same user yields a single membership.
	ShareList(ctx context.Context, listID, userID string) error

	// GetUserByEmail retrieves a user by email. Returns nil, nil on miss.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetOrCreateUser returns the user with the given email, creating it
	// atomically if absent. Concurrent calls with the same email resolve to
	// the same user.
	GetOrCreateUser(ctx context.Context, email string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
