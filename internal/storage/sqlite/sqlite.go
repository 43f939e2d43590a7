// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/superlists/superlists/internal/models"
	"github.com/superlists/superlists/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateList atomically creates a list and its first item.
func (s *SQLiteStore) CreateList(ctx context.Context, firstItemText string, owner *models.User) (*models.List, error) {
	if strings.TrimSpace(firstItemText) == "" {
		return nil, models.ErrEmptyItem
	}

	list := &models.List{
		ID:        uuid.New().String(),
		Owner:     owner,
		CreatedAt: time.Now().Unix(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ownerID sql.NullString
	if owner != nil {
		ownerID = sql.NullString{String: owner.ID, Valid: true}
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO lists (id, owner_id, created_at) VALUES (?, ?, ?)",
		list.ID, ownerID, list.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert list: %w", err)
	}

	item := models.Item{
		ID:        uuid.New().String(),
		ListID:    list.ID,
		Text:      firstItemText,
		Position:  1,
		CreatedAt: list.CreatedAt,
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO items (id, list_id, text, position, created_at) VALUES (?, ?, ?, ?, ?)",
		item.ID, item.ListID, item.Text, item.Position, item.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert first item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	list.Items = []models.Item{item}
	return list, nil
}

// AddItem appends an item to an existing list. Emptiness is checked before
// duplication; the UNIQUE(list_id, text) constraint catches duplicates that
// race past the pre-check.
func (s *SQLiteStore) AddItem(ctx context.Context, listID, text string) (*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.ErrEmptyItem
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM lists WHERE id = ?", listID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, models.ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check list: %w", err)
	}

	var dup int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM items WHERE list_id = ? AND text = ?", listID, text,
	).Scan(&dup)
	if err == nil {
		return nil, models.ErrDuplicateItem
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check duplicate: %w", err)
	}

	item := &models.Item{
		ID:        uuid.New().String(),
		ListID:    listID,
		Text:      text,
		CreatedAt: time.Now().Unix(),
	}
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), 0) + 1 FROM items WHERE list_id = ?", listID,
	).Scan(&item.Position)
	if err != nil {
		return nil, fmt.Errorf("failed to compute position: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO items (id, list_id, text, position, created_at) VALUES (?, ?, ?, ?, ?)",
		item.ID, item.ListID, item.Text, item.Position, item.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrDuplicateItem
		}
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return item, nil
}

// GetList retrieves a list by ID, including its owner, items and sharees.
func (s *SQLiteStore) GetList(ctx context.Context, id string) (*models.List, error) {
	list := &models.List{}
	var ownerID sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, owner_id, created_at FROM lists WHERE id = ?", id,
	).Scan(&list.ID, &ownerID, &list.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get list: %w", err)
	}

	if ownerID.Valid {
		owner, err := s.getUserByID(ctx, ownerID.String)
		if err != nil {
			return nil, err
		}
		list.Owner = owner
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, list_id, text, position, created_at FROM items WHERE list_id = ? ORDER BY position",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.ListID, &item.Text, &item.Position, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		list.Items = append(list.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	shareRows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.email, u.created_at
		 FROM users u JOIN list_shares s ON s.user_id = u.id
		 WHERE s.list_id = ? ORDER BY u.email`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get sharees: %w", err)
	}
	defer shareRows.Close()

	for shareRows.Next() {
		sharee := &models.User{}
		if err := shareRows.Scan(&sharee.ID, &sharee.Email, &sharee.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sharee: %w", err)
		}
		list.SharedWith = append(list.SharedWith, sharee)
	}
	if err := shareRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sharees: %w", err)
	}

	return list, nil
}

// ListsForUser returns the lists the user owns or is a sharee of, newest
// first.
func (s *SQLiteStore) ListsForUser(ctx context.Context, user *models.User) ([]*models.List, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT l.id
		 FROM lists l LEFT JOIN list_shares s ON s.list_id = l.id
		 WHERE l.owner_id = ? OR s.user_id = ?
		 ORDER BY l.id`,
		user.ID, user.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query lists for user: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan list id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate list ids: %w", err)
	}

	lists := make([]*models.List, 0, len(ids))
	for _, id := range ids {
		list, err := s.GetList(ctx, id)
		if err != nil {
			return nil, err
		}
		lists = append(lists, list)
	}
	return lists, nil
}

// DeleteList removes a list; items and share grants go with it via cascade.
func (s *SQLiteStore) DeleteList(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM lists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrListNotFound
	}
	return nil
}

// ShareList grants the user view access to the list. Sharing twice is a
// no-op thanks to INSERT OR IGNORE against the (list_id, user_id) key.
func (s *SQLiteStore) ShareList(ctx context.Context, listID, userID string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM lists WHERE id = ?", listID).Scan(&exists)
	if err == sql.ErrNoRows {
		return models.ErrListNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check list: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO list_shares (list_id, user_id) VALUES (?, ?)",
		listID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to share list: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure from
// the sqlite driver.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
