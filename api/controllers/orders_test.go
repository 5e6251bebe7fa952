package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	ordersvc "github.com/abiagrow/connect-backend/internal/orders"
	"github.com/abiagrow/connect-backend/pkg/enums"
	pkgerrors "github.com/abiagrow/connect-backend/pkg/errors"
)

type stubOrderService struct {
	order *ordersvc.OrderDTO
	list  *ordersvc.OrderList
	err   error

	bulkIDs []uuid.UUID
}

func (s *stubOrderService) Get(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (*ordersvc.OrderDTO, error) {
	return s.order, s.err
}

func (s *stubOrderService) GetByNumber(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, number string) (*ordersvc.OrderDTO, error) {
	return s.order, s.err
}

func (s *stubOrderService) ListForCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) (*ordersvc.OrderList, error) {
	return s.list, s.err
}

func (s *stubOrderService) ListForStore(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, limit, offset int) (*ordersvc.OrderList, error) {
	return s.list, s.err
}

func (s *stubOrderService) MarkPaid(ctx context.Context, orderID uuid.UUID) (*ordersvc.OrderDTO, error) {
	return s.order, s.err
}

func (s *stubOrderService) Ship(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID, req ordersvc.ShipRequest) (*ordersvc.OrderDTO, error) {
	return s.order, s.err
}

func (s *stubOrderService) Deliver(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (*ordersvc.OrderDTO, error) {
	return s.order, s.err
}

func (s *stubOrderService) Cancel(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (*ordersvc.OrderDTO, error) {
	return s.order, s.err
}

func (s *stubOrderService) BulkCancel(ctx context.Context, orderIDs []uuid.UUID) error {
	s.bulkIDs = orderIDs
	return s.err
}

func TestOrderGetSuccess(t *testing.T) {
	record := &ordersvc.OrderDTO{ID: uuid.New(), OrderNumber: "AGC-20260901-ABCDEF01"}
	handler := OrderGet(&stubOrderService{order: record}, nil)

	req := authedRequest(http.MethodGet, "/api/v1/orders/"+record.ID.String(), "")
	req = withRouteParams(req, map[string]string{"orderID": record.ID.String()})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data ordersvc.OrderDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderNumber != record.OrderNumber {
		t.Fatalf("unexpected order number: %s", envelope.Data.OrderNumber)
	}
}

func TestOrderGetRejectsBadID(t *testing.T) {
	handler := OrderGet(&stubOrderService{}, nil)

	req := authedRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", "")
	req = withRouteParams(req, map[string]string{"orderID": "not-a-uuid"})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderShipRequiresTrackingNumber(t *testing.T) {
	handler := OrderShip(&stubOrderService{}, nil)

	req := authedRequest(http.MethodPost, "/api/v1/vendor/orders/x/ship", `{}`)
	req = withRouteParams(req, map[string]string{"orderID": uuid.NewString()})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderCancelStateConflict(t *testing.T) {
	stub := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "cannot transition from delivered to cancelled")}
	handler := OrderCancel(stub, nil)

	req := authedRequest(http.MethodPost, "/api/v1/orders/x/cancel", "")
	req = withRouteParams(req, map[string]string{"orderID": uuid.NewString()})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestOrderBulkCancelPassesIDs(t *testing.T) {
	stub := &stubOrderService{}
	handler := OrderBulkCancel(stub, nil)

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	body, _ := json.Marshal(map[string]any{"order_ids": ids})

	req := authedRequest(http.MethodPost, "/api/admin/v1/orders/bulk-cancel", string(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(stub.bulkIDs) != 2 {
		t.Fatalf("expected 2 ids forwarded got %d", len(stub.bulkIDs))
	}
}

func TestOrderBulkCancelRejectsEmptyList(t *testing.T) {
	handler := OrderBulkCancel(&stubOrderService{}, nil)

	req := authedRequest(http.MethodPost, "/api/admin/v1/orders/bulk-cancel", `{"order_ids":[]}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
