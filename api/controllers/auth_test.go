package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	authsvc "github.com/abiagrow/connect-backend/internal/auth"
	"github.com/abiagrow/connect-backend/internal/users"
	pkgerrors "github.com/abiagrow/connect-backend/pkg/errors"
)

type stubAuthService struct {
	login *authsvc.LoginResponse
	user  *users.UserDTO
	err   error
}

func (s stubAuthService) Login(ctx context.Context, req authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	return s.login, s.err
}

func (s stubAuthService) VerifyEmail(ctx context.Context, token uuid.UUID) (*users.UserDTO, error) {
	return s.user, s.err
}

func (s stubAuthService) ResendVerification(ctx context.Context, req authsvc.ResendVerificationRequest) error {
	return s.err
}

func TestLoginSuccess(t *testing.T) {
	stub := stubAuthService{login: &authsvc.LoginResponse{AccessToken: "token"}}
	handler := Login(stub, nil)

	body := `{"email":"ada@example.com","password":"supersecret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data authsvc.LoginResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "token" {
		t.Fatalf("unexpected access token: %q", envelope.Data.AccessToken)
	}
}

func TestLoginRejectsMissingPassword(t *testing.T) {
	handler := Login(stubAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"ada@example.com"}`))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestLoginUnauthorized(t *testing.T) {
	stub := stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	handler := Login(stub, nil)

	body := `{"email":"ada@example.com","password":"wrong-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestVerifyEmailRejectsBadToken(t *testing.T) {
	handler := VerifyEmail(stubAuthService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify-email?token=nope", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestVerifyEmailSuccess(t *testing.T) {
	stub := stubAuthService{user: &users.UserDTO{ID: uuid.New(), EmailVerified: true}}
	handler := VerifyEmail(stub, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify-email?token="+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data users.UserDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.EmailVerified {
		t.Fatal("expected verified user in response")
	}
}
