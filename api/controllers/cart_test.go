package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/abiagrow/connect-backend/api/middleware"
	cartsvc "github.com/abiagrow/connect-backend/internal/cart"
	pkgerrors "github.com/abiagrow/connect-backend/pkg/errors"
)

type stubCartService struct {
	cart *cartsvc.CartDTO
	err  error
}

func (s stubCartService) Get(ctx context.Context, customerID uuid.UUID) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func (s stubCartService) AddItem(ctx context.Context, customerID uuid.UUID, req cartsvc.AddItemRequest) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func (s stubCartService) UpdateItem(ctx context.Context, customerID, itemID uuid.UUID, req cartsvc.UpdateItemRequest) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func (s stubCartService) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func (s stubCartService) Clear(ctx context.Context, customerID uuid.UUID) error {
	return s.err
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithRole(ctx, "customer")
	return req.WithContext(ctx)
}

func TestCartGetSuccess(t *testing.T) {
	record := &cartsvc.CartDTO{ID: uuid.New(), CustomerID: uuid.New()}
	handler := CartGet(stubCartService{cart: record}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartsvc.CartDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != record.ID {
		t.Fatalf("unexpected cart id: %s", envelope.Data.ID)
	}
}

func TestCartGetMissingUserContext(t *testing.T) {
	handler := CartGet(stubCartService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddItemRejectsBadBody(t *testing.T) {
	handler := CartAddItem(stubCartService{}, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/items", `{"quantity":0}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddItemStockConflict(t *testing.T) {
	handler := CartAddItem(stubCartService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock")}, nil)
	body := `{"product_id":"` + uuid.NewString() + `","quantity":2}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestCartClearNoContent(t *testing.T) {
	handler := CartClear(stubCartService{}, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodDelete, "/api/v1/cart", ""))

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
}
