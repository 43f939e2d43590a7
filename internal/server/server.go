// Package server exposes the list and auth services over a JSON REST API.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/superlists/superlists/internal/auth"
	"github.com/superlists/superlists/internal/metrics"
	"github.com/superlists/superlists/internal/middleware"
	"github.com/superlists/superlists/internal/models"
	"github.com/superlists/superlists/internal/service"
)

// Server wires the services to their HTTP routes.
type Server struct {
	lists      *service.ListService
	authSvc    *service.AuthService
	backend    auth.Backend
	jwtManager *auth.JWTManager
	logger     *slog.Logger
}

// New creates a Server.
func New(lists *service.ListService, authSvc *service.AuthService, backend auth.Backend, jwtManager *auth.JWTManager, logger *slog.Logger) *Server {
	return &Server{
		lists:      lists,
		authSvc:    authSvc,
		backend:    backend,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// Router builds the HTTP handler with all routes and middleware attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.CORS)
	r.Use(middleware.Logging)

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(s.jwtManager))
			r.Post("/lists", s.handleCreateList)
			r.Get("/lists/{listID}", s.handleGetList)
			r.Post("/lists/{listID}/items", s.handleAddItem)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.jwtManager))
			r.Post("/lists/{listID}/share", s.handleShare)
			r.Get("/my-lists", s.handleMyLists)
		})
	})

	return r
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Assertion string `json:"assertion"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Assertion == "" {
		writeError(w, http.StatusBadRequest, "assertion required")
		return
	}

	result, err := s.authSvc.Login(r.Context(), req.Assertion)
	if err != nil {
		if errors.Is(err, service.ErrLoginRejected) {
			writeError(w, http.StatusUnauthorized, "login rejected")
			return
		}
		writeError(w, http.StatusBadGateway, "identity provider unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": result.Token,
		"user":  userJSON(result.User),
	})
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	owner, err := s.currentUser(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	list, err := s.lists.CreateList(r.Context(), req.Text, owner)
	if err != nil {
		if errors.Is(err, models.ErrEmptyItem) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeList(w, http.StatusCreated, list)
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	list, ok := s.loadViewableList(w, r)
	if !ok {
		return
	}
	s.writeList(w, http.StatusOK, list)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	list, ok := s.loadViewableList(w, r)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := s.lists.AddItem(r.Context(), list.ID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEmptyItem), errors.Is(err, models.ErrDuplicateItem):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, models.ErrListNotFound):
			writeError(w, http.StatusNotFound, "list not found")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, itemJSON(item))
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	caller, err := s.currentUser(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if caller == nil {
		writeError(w, http.StatusUnauthorized, "unknown session user")
		return
	}

	list, err := s.lists.GetList(r.Context(), chi.URLParam(r, "listID"))
	if err != nil {
		if errors.Is(err, models.ErrListNotFound) {
			writeError(w, http.StatusNotFound, "list not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Only the owner hands out access; anonymous lists are public already.
	if list.Owner == nil || list.Owner.Email != caller.Email {
		writeError(w, http.StatusForbidden, "only the owner can share a list")
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "email required")
		return
	}

	if err := s.lists.Share(r.Context(), list.ID, req.Email); err != nil {
		switch {
		case errors.Is(err, models.ErrUserNotFound):
			writeError(w, http.StatusBadRequest, "no user with that email")
		case errors.Is(err, models.ErrListNotFound):
			writeError(w, http.StatusNotFound, "list not found")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMyLists(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unknown session user")
		return
	}

	lists, err := s.lists.MyLists(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]map[string]any, 0, len(lists))
	for _, list := range lists {
		entry, err := s.listJSON(list)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, map[string]any{"lists": out})
}

// loadViewableList fetches the list from the URL and enforces the view
// policy: anonymous lists are public, owned lists are visible to the owner
// and sharees. Writes the error response itself when returning ok=false.
func (s *Server) loadViewableList(w http.ResponseWriter, r *http.Request) (*models.List, bool) {
	list, err := s.lists.GetList(r.Context(), chi.URLParam(r, "listID"))
	if err != nil {
		if errors.Is(err, models.ErrListNotFound) {
			writeError(w, http.StatusNotFound, "list not found")
		} else {
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return nil, false
	}

	viewer, err := s.currentUser(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	if !list.CanView(viewer) {
		writeError(w, http.StatusForbidden, "you don't have access to this list")
		return nil, false
	}
	return list, true
}

// currentUser resolves the session identity (if any) to a stored user.
// Returns nil, nil for anonymous requests and for stale sessions whose user
// no longer exists.
func (s *Server) currentUser(r *http.Request) (*models.User, error) {
	email := middleware.GetEmail(r.Context())
	if email == "" {
		return nil, nil
	}
	return s.backend.GetUser(r.Context(), email)
}

func (s *Server) writeList(w http.ResponseWriter, status int, list *models.List) {
	entry, err := s.listJSON(list)
	if err != nil {
		// A persisted list with no items means a failed creation was not
		// rolled back; surface it as a server fault.
		s.logger.Error("List has no items", "list_id", list.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, status, entry)
}

func (s *Server) listJSON(list *models.List) (map[string]any, error) {
	name, err := list.Name()
	if err != nil {
		return nil, err
	}

	items := make([]map[string]any, len(list.Items))
	for i, item := range list.Items {
		items[i] = itemJSON(&item)
	}

	sharedWith := make([]string, len(list.SharedWith))
	for i, sharee := range list.SharedWith {
		sharedWith[i] = sharee.Email
	}

	return map[string]any{
		"id":          list.ID,
		"name":        name,
		"owner":       list.OwnerDisplay(),
		"items":       items,
		"shared_with": sharedWith,
	}, nil
}

func itemJSON(item *models.Item) map[string]any {
	return map[string]any{
		"id":       item.ID,
		"text":     item.Text,
		"position": item.Position,
	}
}

func userJSON(user *models.User) map[string]any {
	return map[string]any{
		"id":    user.ID,
		"email": user.Email,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
