package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/superlists/superlists/internal/models"
)

// statusOkay is the verifier's literal success marker.
const statusOkay = "okay"

// defaultTimeout bounds the single round trip to the verifier. A timeout is
// a transport failure, not a rejected login.
const defaultTimeout = 10 * time.Second

// UserStorage defines the interface for user persistence operations.
// This allows the backend to be independent of the storage implementation.
type UserStorage interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetOrCreateUser(ctx context.Context, email string) (*models.User, error)
}

// Ensure PersonaBackend implements Backend
var _ Backend = (*PersonaBackend)(nil)

// PersonaBackend implements assertion-based authentication against an
// external Persona-style verifier. The client posts the assertion together
// with the configured audience; the verifier answers with a JSON body whose
// status field says whether the assertion checked out for that audience.
type PersonaBackend struct {
	verifyURL string
	audience  string
	storage   UserStorage
	client    *http.Client
	logger    *slog.Logger
}

// verifierResponse is the subset of the verifier's JSON body we care about.
type verifierResponse struct {
	Status string `json:"status"`
	Email  string `json:"email"`
}

// NewPersonaBackend creates a backend that verifies assertions at verifyURL
// for the given audience. The audience is injected here rather than read
// from ambient configuration.
func NewPersonaBackend(verifyURL, audience string, storage UserStorage, logger *slog.Logger) *PersonaBackend {
	return &PersonaBackend{
		verifyURL: verifyURL,
		audience:  audience,
		storage:   storage,
		client:    &http.Client{Timeout: defaultTimeout},
		logger:    logger,
	}
}

// Authenticate sends the assertion to the verifier in a single round trip.
// On a verified assertion the user is looked up by email and created on
// first login. A rejected assertion returns nil, nil; transport failures and
// malformed bodies return an error.
func (b *PersonaBackend) Authenticate(ctx context.Context, assertion string) (*models.User, error) {
	form := url.Values{
		"assertion": {assertion},
		"audience":  {b.audience},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build verifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.client.Do(req)
	if err != nil {
		b.logger.Warn("Verifier unreachable", "url", b.verifyURL, "error", err)
		return nil, fmt.Errorf("verifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b.logger.Warn("Verifier returned non-success status", "status", resp.StatusCode)
		return nil, nil
	}

	var body verifierResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		b.logger.Warn("Verifier response malformed", "error", err)
		return nil, fmt.Errorf("failed to decode verifier response: %w", err)
	}

	if body.Status != statusOkay {
		b.logger.Warn("Verifier rejected assertion", "status", body.Status)
		return nil, nil
	}

	user, err := b.storage.GetOrCreateUser(ctx, body.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}
	return user, nil
}

// GetUser resolves an email to a user. Returns nil, nil on miss.
func (b *PersonaBackend) GetUser(ctx context.Context, email string) (*models.User, error) {
	return b.storage.GetUserByEmail(ctx, email)
}
