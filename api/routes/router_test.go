package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgauth "github.com/abiagrow/connect-backend/pkg/auth"
	"github.com/abiagrow/connect-backend/pkg/auth/session"
	"github.com/abiagrow/connect-backend/pkg/config"
	"github.com/abiagrow/connect-backend/pkg/enums"
)

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60},
	}
}

func testRouter() http.Handler {
	return NewRouter(Deps{
		Config:   testConfig(),
		Sessions: stubSessionChecker{},
	})
}

func mintToken(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testConfig().JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRouterHealthz(t *testing.T) {
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRouterPublicBrowseRouteMounted(t *testing.T) {
	// Nil service hits the controller guard, not a 404, proving the route
	// is wired.
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestRouterCartRequiresAuth(t *testing.T) {
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRouterAdminRejectsCustomers(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/bulk-cancel", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleCustomer))

	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestRouterAdminAllowsAdmins(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/bulk-cancel", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleAdmin))

	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, req)
	// Past auth and role checks: the nil service guard answers.
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
