package httptransport_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	httptransport "github.com/ErlanBelekov/portfolio/internal/http"
	"github.com/ErlanBelekov/portfolio/internal/http/middleware"
	"github.com/ErlanBelekov/portfolio/internal/storage"
	"github.com/ErlanBelekov/portfolio/internal/usecase"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---- fakes ----

// fakeSessionAuth knows two tokens: "admin" and "user".
type fakeSessionAuth struct{}

func (fakeSessionAuth) Authenticate(_ context.Context, token string) (*usecase.Principal, error) {
	switch token {
	case "admin", "user":
		return &usecase.Principal{UserID: token, SessionID: "s-" + token}, nil
	}
	return nil, domain.ErrTokenInvalid
}

func (fakeSessionAuth) HasRole(_ context.Context, userID string, role domain.Role) (bool, error) {
	return userID == "admin" && role == domain.RoleAdmin, nil
}

// newTestRouter wires the router with empty handlers. Only middleware and
// handler-free routes may be exercised.
func newTestRouter(t *testing.T) (*gin.Engine, *storage.Store) {
	t.Helper()
	store, err := storage.NewStore(t.TempDir(), "http://localhost:8080")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	forms := middleware.NewRateLimiter(5, time.Minute)
	auth := middleware.NewRateLimiter(5, time.Minute)
	t.Cleanup(func() {
		forms.Stop()
		auth.Stop()
	})

	r := httptransport.NewRouter(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		fakeSessionAuth{},
		httptransport.Handlers{},
		httptransport.Options{FormLimiter: forms, AuthLimiter: auth, Buckets: store},
	)
	return r, store
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_AdminRoutesRequireAdmin(t *testing.T) {
	r, _ := newTestRouter(t)

	if w := get(r, "/admin/stats", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want 401", w.Code)
	}
	if w := get(r, "/admin/stats", "user"); w.Code != http.StatusForbidden {
		t.Errorf("non-admin: status = %d, want 403", w.Code)
	}
}

func TestRouter_ThumbnailFunctionRequiresAdmin(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/functions/v1/generate-thumbnail", nil)
	req.Header.Set("Authorization", "Bearer user")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestRouter_Sections(t *testing.T) {
	r, _ := newTestRouter(t)
	w := get(r, "/api/sections", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestRouter_ServesPublicBuckets(t *testing.T) {
	r, store := newTestRouter(t)
	if err := os.WriteFile(filepath.Join(store.Dir(storage.BucketProjectImages), "a.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := get(r, storage.PublicPrefix+"/project-images/a.png", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "png" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestRouter_FunctionPreflight(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/functions/v1/send-welcome-email", nil)
	req.Header.Set("Origin", "https://portfolio.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}
