package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgauth "github.com/pizzaro/pizzaro-backend/pkg/auth"
	"github.com/pizzaro/pizzaro-backend/pkg/config"
	"github.com/pizzaro/pizzaro-backend/pkg/enums"
	"github.com/pizzaro/pizzaro-backend/pkg/logger"
)

type okPinger struct{}

func (okPinger) Ping(ctx context.Context) error { return nil }

type stubSessionChecker struct {
	live bool
}

func (s *stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return s.live, nil
}

func testRouterConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Env:         "test",
			Port:        "8080",
			CORSOrigins: "*",
		},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "pizzaro-test",
			ExpirationMinutes: 60,
			AdminExpiration:   30,
		},
	}
}

func newTestRouter(t *testing.T, sessions *stubSessionChecker) http.Handler {
	t.Helper()
	log := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	return NewRouter(RouterParams{
		Config:   testRouterConfig(),
		Logger:   log,
		DB:       okPinger{},
		Redis:    okPinger{},
		Sessions: sessions,
	})
}

func mintToken(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: "42",
		Email:  "ivan@example.com",
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t, &stubSessionChecker{})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if rec.Header().Get("X-Pizzaro-Env") != "test" {
		t.Fatalf("env header missing: %v", rec.Header())
	}
}

func TestHealthReady(t *testing.T) {
	router := newTestRouter(t, &stubSessionChecker{})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestProfileRequiresAuth(t *testing.T) {
	router := newTestRouter(t, &stubSessionChecker{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestProfileRejectsRevokedSession(t *testing.T) {
	router := newTestRouter(t, &stubSessionChecker{live: false})
	token := mintToken(t, testRouterConfig(), enums.RoleCustomer)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked session, got %d", rec.Code)
	}
}

func TestAdminRoutesRejectCustomerToken(t *testing.T) {
	router := newTestRouter(t, &stubSessionChecker{live: true})
	token := mintToken(t, testRouterConfig(), enums.RoleCustomer)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCartRouteMintsToken(t *testing.T) {
	router := newTestRouter(t, &stubSessionChecker{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get("X-Cart-Token") == "" {
		t.Fatal("cart token header was not minted")
	}
}
