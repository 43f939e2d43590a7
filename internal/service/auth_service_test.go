package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/superlists/superlists/internal/auth"
)

func newTestAuthService(t *testing.T, verifierStatus int, verifierBody string) (*AuthService, *auth.JWTManager) {
	t.Helper()

	_, store := newTestListService(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(verifierStatus)
		fmt.Fprint(w, verifierBody)
	}))
	t.Cleanup(srv.Close)

	backend := auth.NewPersonaBackend(srv.URL, "localhost", store, discardLogger())
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(backend, jwtManager, discardLogger()), jwtManager
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("verified assertion yields a session", func(t *testing.T) {
		svc, jwtManager := newTestAuthService(t, http.StatusOK, `{"status": "okay", "email": "a@b.com"}`)

		result, err := svc.Login(ctx, "an assertion")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if result.User.Email != "a@b.com" {
			t.Errorf("email = %q, want a@b.com", result.User.Email)
		}

		claims, err := jwtManager.Validate(result.Token)
		if err != nil {
			t.Fatalf("token did not validate: %v", err)
		}
		if claims.Email != "a@b.com" {
			t.Errorf("token email = %q, want a@b.com", claims.Email)
		}
		if claims.UserID != result.User.ID {
			t.Errorf("token user_id = %q, want %q", claims.UserID, result.User.ID)
		}
	})

	t.Run("rejected assertion", func(t *testing.T) {
		svc, _ := newTestAuthService(t, http.StatusOK, `{"status": "failure"}`)

		_, err := svc.Login(ctx, "bad assertion")
		if !errors.Is(err, ErrLoginRejected) {
			t.Fatalf("expected ErrLoginRejected, got %v", err)
		}
	})

	t.Run("verifier garbage is not a rejection", func(t *testing.T) {
		svc, _ := newTestAuthService(t, http.StatusOK, `not json`)

		_, err := svc.Login(ctx, "an assertion")
		if err == nil {
			t.Fatal("expected an error")
		}
		if errors.Is(err, ErrLoginRejected) {
			t.Error("transport failures must stay distinct from rejections")
		}
	})
}
