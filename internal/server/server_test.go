package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/superlists/superlists/internal/auth"
	"github.com/superlists/superlists/internal/service"
	"github.com/superlists/superlists/internal/storage/sqlite"
)

// testEnv is a full stack on a temp database with a fake verifier that
// accepts any assertion of the form "as:<email>".
type testEnv struct {
	server *httptest.Server
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "superlists-server-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	verifier := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		assertion := r.PostFormValue("assertion")
		if len(assertion) > 3 && assertion[:3] == "as:" {
			fmt.Fprintf(w, `{"status": "okay", "email": %q}`, assertion[3:])
			return
		}
		fmt.Fprint(w, `{"status": "failure"}`)
	}))
	t.Cleanup(verifier.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := auth.NewPersonaBackend(verifier.URL, "localhost", store, logger)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	srv := New(
		service.NewListService(store, logger),
		service.NewAuthService(backend, jwtManager, logger),
		backend,
		jwtManager,
		logger,
	)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return &testEnv{server: ts}
}

// do sends a JSON request, optionally authenticated, and decodes the JSON
// response body into a map.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	decoded := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("response not JSON (%d): %s", resp.StatusCode, raw)
		}
	}
	return resp.StatusCode, decoded
}

// login authenticates as the given email and returns a session token.
func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"assertion": "as:" + email})
	if status != http.StatusOK {
		t.Fatalf("login failed with %d: %v", status, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("no token in login response")
	}
	return token
}

func TestLoginEndpoint(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("success returns token and user", func(t *testing.T) {
		status, body := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"assertion": "as:a@b.com"})
		if status != http.StatusOK {
			t.Fatalf("status = %d, want 200", status)
		}
		user, _ := body["user"].(map[string]any)
		if user["email"] != "a@b.com" {
			t.Errorf("user email = %v, want a@b.com", user["email"])
		}
	})

	t.Run("rejected assertion", func(t *testing.T) {
		status, _ := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"assertion": "nonsense"})
		if status != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", status)
		}
	})

	t.Run("missing assertion", func(t *testing.T) {
		status, _ := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{})
		if status != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", status)
		}
	})
}

func TestListEndpoints(t *testing.T) {
	env := setupTestEnv(t)

	status, list := env.do(t, http.MethodPost, "/api/lists", "", map[string]string{"text": "Buy milk"})
	if status != http.StatusCreated {
		t.Fatalf("create list status = %d: %v", status, list)
	}
	listID, _ := list["id"].(string)
	if list["name"] != "Buy milk" {
		t.Errorf("name = %v, want Buy milk", list["name"])
	}
	if list["owner"] != "Anonymous User" {
		t.Errorf("owner = %v, want Anonymous User", list["owner"])
	}

	t.Run("add item", func(t *testing.T) {
		status, item := env.do(t, http.MethodPost, "/api/lists/"+listID+"/items", "", map[string]string{"text": "Buy eggs"})
		if status != http.StatusCreated {
			t.Fatalf("status = %d: %v", status, item)
		}

		_, got := env.do(t, http.MethodGet, "/api/lists/"+listID, "", nil)
		items, _ := got["items"].([]any)
		if len(items) != 2 {
			t.Fatalf("items = %d, want 2", len(items))
		}
	})

	t.Run("duplicate item message", func(t *testing.T) {
		status, body := env.do(t, http.MethodPost, "/api/lists/"+listID+"/items", "", map[string]string{"text": "Buy milk"})
		if status != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", status)
		}
		if body["error"] != "You've already got this in your list" {
			t.Errorf("error = %v", body["error"])
		}
	})

	t.Run("empty item message", func(t *testing.T) {
		status, body := env.do(t, http.MethodPost, "/api/lists/"+listID+"/items", "", map[string]string{"text": ""})
		if status != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", status)
		}
		if body["error"] != "You can't have an empty list item" {
			t.Errorf("error = %v", body["error"])
		}
	})

	t.Run("empty first item", func(t *testing.T) {
		status, body := env.do(t, http.MethodPost, "/api/lists", "", map[string]string{"text": ""})
		if status != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", status)
		}
		if body["error"] != "You can't have an empty list item" {
			t.Errorf("error = %v", body["error"])
		}
	})

	t.Run("unknown list", func(t *testing.T) {
		status, _ := env.do(t, http.MethodGet, "/api/lists/no-such-list", "", nil)
		if status != http.StatusNotFound {
			t.Errorf("status = %d, want 404", status)
		}
	})
}

func TestOwnedListAccess(t *testing.T) {
	env := setupTestEnv(t)

	ownerToken := env.login(t, "owner@example.com")
	shareeToken := env.login(t, "sharee@example.com")
	strangerToken := env.login(t, "stranger@example.com")

	status, list := env.do(t, http.MethodPost, "/api/lists", ownerToken, map[string]string{"text": "secret plans"})
	if status != http.StatusCreated {
		t.Fatalf("create list status = %d", status)
	}
	listID, _ := list["id"].(string)
	if list["owner"] != "owner@example.com" {
		t.Errorf("owner = %v", list["owner"])
	}

	t.Run("stranger and anonymous get 403", func(t *testing.T) {
		if status, _ := env.do(t, http.MethodGet, "/api/lists/"+listID, strangerToken, nil); status != http.StatusForbidden {
			t.Errorf("stranger status = %d, want 403", status)
		}
		if status, _ := env.do(t, http.MethodGet, "/api/lists/"+listID, "", nil); status != http.StatusForbidden {
			t.Errorf("anonymous status = %d, want 403", status)
		}
	})

	t.Run("share grants access", func(t *testing.T) {
		status, _ := env.do(t, http.MethodPost, "/api/lists/"+listID+"/share", ownerToken, map[string]string{"email": "sharee@example.com"})
		if status != http.StatusNoContent {
			t.Fatalf("share status = %d, want 204", status)
		}

		status, got := env.do(t, http.MethodGet, "/api/lists/"+listID, shareeToken, nil)
		if status != http.StatusOK {
			t.Fatalf("sharee status = %d, want 200", status)
		}
		// Full visibility symmetry: the sharee sees the owner and sharees.
		if got["owner"] != "owner@example.com" {
			t.Errorf("owner shown to sharee = %v", got["owner"])
		}
		shared, _ := got["shared_with"].([]any)
		if len(shared) != 1 || shared[0] != "sharee@example.com" {
			t.Errorf("shared_with = %v", shared)
		}
	})

	t.Run("only the owner shares", func(t *testing.T) {
		status, _ := env.do(t, http.MethodPost, "/api/lists/"+listID+"/share", shareeToken, map[string]string{"email": "stranger@example.com"})
		if status != http.StatusForbidden {
			t.Errorf("status = %d, want 403", status)
		}
	})

	t.Run("sharing with unknown email fails", func(t *testing.T) {
		status, _ := env.do(t, http.MethodPost, "/api/lists/"+listID+"/share", ownerToken, map[string]string{"email": "nobody@example.com"})
		if status != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", status)
		}
	})

	t.Run("share requires auth", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, env.server.URL+"/api/lists/"+listID+"/share", bytes.NewReader([]byte(`{"email":"a@b.com"}`)))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})
}

func TestMyListsEndpoint(t *testing.T) {
	env := setupTestEnv(t)

	ownerToken := env.login(t, "owner@example.com")
	friendToken := env.login(t, "friend@example.com")

	if status, _ := env.do(t, http.MethodPost, "/api/lists", ownerToken, map[string]string{"text": "mine"}); status != http.StatusCreated {
		t.Fatalf("create failed: %d", status)
	}
	status, theirs := env.do(t, http.MethodPost, "/api/lists", friendToken, map[string]string{"text": "theirs"})
	if status != http.StatusCreated {
		t.Fatalf("create failed: %d", status)
	}
	theirsID, _ := theirs["id"].(string)
	if status, _ := env.do(t, http.MethodPost, "/api/lists/"+theirsID+"/share", friendToken, map[string]string{"email": "owner@example.com"}); status != http.StatusNoContent {
		t.Fatalf("share failed: %d", status)
	}

	t.Run("requires auth", func(t *testing.T) {
		status, _ := env.do(t, http.MethodGet, "/api/my-lists", "", nil)
		if status != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", status)
		}
	})

	t.Run("returns owned and shared lists", func(t *testing.T) {
		status, body := env.do(t, http.MethodGet, "/api/my-lists", ownerToken, nil)
		if status != http.StatusOK {
			t.Fatalf("status = %d, want 200", status)
		}
		lists, _ := body["lists"].([]any)
		if len(lists) != 2 {
			t.Errorf("lists = %d, want 2", len(lists))
		}
	})
}
