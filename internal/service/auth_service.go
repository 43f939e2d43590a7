package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/superlists/superlists/internal/auth"
	"github.com/superlists/superlists/internal/metrics"
	"github.com/superlists/superlists/internal/models"
)

// ErrLoginRejected means the identity provider examined the assertion and
// said no. Distinct from a transport failure, which surfaces as a wrapped
// error from Login.
var ErrLoginRejected = errors.New("login rejected")

// LoginResult is a successful login: the provisioned user plus a session
// token for subsequent requests.
type LoginResult struct {
	User  *models.User
	Token string
}

// AuthService turns assertion logins into sessions.
type AuthService struct {
	backend    auth.Backend
	jwtManager *auth.JWTManager
	logger     *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(backend auth.Backend, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		backend:    backend,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// Login verifies the assertion with the identity provider and, on success,
// returns the (possibly freshly provisioned) user and a session token.
// Returns ErrLoginRejected when the provider turned the assertion down.
func (s *AuthService) Login(ctx context.Context, assertion string) (*LoginResult, error) {
	s.logger.Info("Login request")

	user, err := s.backend.Authenticate(ctx, assertion)
	if err != nil {
		metrics.Logins.WithLabelValues("transport_error").Inc()
		s.logger.Error("Login failed", "error", err)
		return nil, fmt.Errorf("authentication backend failed: %w", err)
	}
	if user == nil {
		metrics.Logins.WithLabelValues("rejected").Inc()
		s.logger.Warn("Login rejected by verifier")
		return nil, ErrLoginRejected
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, err
	}

	metrics.Logins.WithLabelValues("ok").Inc()
	s.logger.Info("Login successful", "user_id", user.ID, "email", user.Email)
	return &LoginResult{User: user, Token: token}, nil
}
