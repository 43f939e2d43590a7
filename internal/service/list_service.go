package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/superlists/superlists/internal/metrics"
	"github.com/superlists/superlists/internal/models"
	"github.com/superlists/superlists/internal/storage"
)

// ListService implements the list and sharing operations on top of a Store.
type ListService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewListService creates a new ListService with the given storage backend.
func NewListService(store storage.Store, logger *slog.Logger) *ListService {
	return &ListService{store: store, logger: logger}
}

// CreateList creates a list with its first item. owner may be nil for an
// anonymous, publicly viewable list.
func (s *ListService) CreateList(ctx context.Context, firstItemText string, owner *models.User) (*models.List, error) {
	s.logger.Info("CreateList request", "owner", ownerAttr(owner))

	list, err := s.store.CreateList(ctx, firstItemText, owner)
	if err != nil {
		if errors.Is(err, models.ErrEmptyItem) {
			metrics.ItemRejections.WithLabelValues("empty").Inc()
			s.logger.Warn("CreateList rejected", "reason", "empty item")
			return nil, err
		}
		s.logger.Error("CreateList failed", "error", err)
		return nil, err
	}

	metrics.ListsCreated.Inc()
	metrics.ItemsCreated.Inc()
	s.logger.Info("List created", "list_id", list.ID, "owner", list.OwnerDisplay())
	return list, nil
}

// AddItem appends an item to a list.
func (s *ListService) AddItem(ctx context.Context, listID, text string) (*models.Item, error) {
	s.logger.Info("AddItem request", "list_id", listID)

	item, err := s.store.AddItem(ctx, listID, text)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEmptyItem):
			metrics.ItemRejections.WithLabelValues("empty").Inc()
			s.logger.Warn("AddItem rejected", "list_id", listID, "reason", "empty item")
		case errors.Is(err, models.ErrDuplicateItem):
			metrics.ItemRejections.WithLabelValues("duplicate").Inc()
			s.logger.Warn("AddItem rejected", "list_id", listID, "reason", "duplicate item")
		case errors.Is(err, models.ErrListNotFound):
			s.logger.Warn("AddItem failed", "list_id", listID, "error", err)
		default:
			s.logger.Error("AddItem failed", "list_id", listID, "error", err)
		}
		return nil, err
	}

	metrics.ItemsCreated.Inc()
	s.logger.Info("Item added", "list_id", listID, "item_id", item.ID, "position", item.Position)
	return item, nil
}

// GetList retrieves a list by ID.
func (s *ListService) GetList(ctx context.Context, id string) (*models.List, error) {
	list, err := s.store.GetList(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrListNotFound) {
			s.logger.Warn("GetList miss", "list_id", id)
		} else {
			s.logger.Error("GetList failed", "list_id", id, "error", err)
		}
		return nil, err
	}
	return list, nil
}

// MyLists returns the lists the user owns or has been granted access to.
func (s *ListService) MyLists(ctx context.Context, user *models.User) ([]*models.List, error) {
	lists, err := s.store.ListsForUser(ctx, user)
	if err != nil {
		s.logger.Error("MyLists failed", "email", user.Email, "error", err)
		return nil, err
	}
	s.logger.Info("MyLists", "email", user.Email, "count", len(lists))
	return lists, nil
}

// Share grants the user behind shareeEmail view access to the list. Sharing
// never provisions accounts: an unknown email is models.ErrUserNotFound.
// Re-sharing with the same email is a no-op.
func (s *ListService) Share(ctx context.Context, listID, shareeEmail string) error {
	s.logger.Info("Share request", "list_id", listID, "sharee", shareeEmail)

	sharee, err := s.store.GetUserByEmail(ctx, shareeEmail)
	if err != nil {
		s.logger.Error("Share failed", "list_id", listID, "error", err)
		return err
	}
	if sharee == nil {
		s.logger.Warn("Share rejected", "list_id", listID, "sharee", shareeEmail, "reason", "no such user")
		return models.ErrUserNotFound
	}

	if err := s.store.ShareList(ctx, listID, sharee.ID); err != nil {
		if errors.Is(err, models.ErrListNotFound) {
			s.logger.Warn("Share failed", "list_id", listID, "error", err)
		} else {
			s.logger.Error("Share failed", "list_id", listID, "error", err)
		}
		return err
	}

	metrics.Shares.Inc()
	s.logger.Info("List shared", "list_id", listID, "sharee", shareeEmail)
	return nil
}

func ownerAttr(owner *models.User) string {
	if owner == nil {
		return models.AnonymousOwner
	}
	return owner.Email
}
