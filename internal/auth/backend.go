package auth

import (
	"context"

	"github.com/superlists/superlists/internal/models"
)

// Backend defines the interface for identity-provider implementations.
// This abstraction allows swapping between different identity providers
// (Persona assertions, OAuth, etc.) without changing the service layer code.
type Backend interface {
	// Authenticate verifies the given credential and returns the user it
	// belongs to, provisioning the account on first login. Returns nil, nil
	// when the provider rejects the credential; a non-nil error means the
	// provider could not be reached or answered garbage.
	Authenticate(ctx context.Context, assertion string) (*models.User, error)

	// GetUser resolves a previously authenticated identity key (the email)
	// back to a user. Returns nil, nil if no such user exists.
	GetUser(ctx context.Context, email string) (*models.User, error)
}
