package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/shopcore/internal/domain/errors"
	"github.com/polkiloo/shopcore/internal/domain/model"
	"github.com/polkiloo/shopcore/internal/server/http/dto"
	"github.com/polkiloo/shopcore/internal/server/http/middleware"
	testhelpers "github.com/polkiloo/shopcore/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(t *testing.T, method, path, target string, handler gin.HandlerFunc, setup func(*gin.Context), body []byte) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, path, func(c *gin.Context) {
		if setup != nil {
			setup(c)
		}
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func asUser(id string) func(*gin.Context) {
	return func(c *gin.Context) { c.Set(middleware.UserIDContextKey, id) }
}

func asAdmin(c *gin.Context) {
	c.Set(middleware.AdminContextKey, true)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("malformed envelope: %v", err)
	}
	return resp
}

func TestCurrentUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentUserID(c); got != "" {
		t.Fatalf("expected empty when not set, got %q", got)
	}

	c.Set(middleware.UserIDContextKey, "user-42")
	if got := CurrentUserID(c); got != "user-42" {
		t.Fatalf("expected user-42, got %q", got)
	}
}

func TestOrderHandlerCreate(t *testing.T) {
	body, _ := json.Marshal(dto.CreateOrderRequest{
		Items:           []dto.CartItemRequest{{ProductID: "p1", Quantity: 1, Price: 50}},
		ShippingAddress: dto.ShippingAddressRequest{FullName: "Jordan Smith", Street: "1 Main St", City: "Springfield"},
	})

	facade := &testhelpers.CommerceFacadeStub{CreateOrderFn: func(_ context.Context, userID string, cart model.Cart) (*model.Order, error) {
		if userID != "user-1" {
			t.Fatalf("unexpected user id %q", userID)
		}
		if len(cart.Items) != 1 || cart.Items[0].ProductID != "p1" {
			t.Fatalf("unexpected cart %+v", cart)
		}
		return &model.Order{ID: "order-1", UserID: userID, TotalPrice: 65}, nil
	}}

	w := performRequest(t, http.MethodPost, "/orders", "/orders", NewOrderHandler(facade).Create, asUser("user-1"), body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	resp := decodeEnvelope(t, w)
	if !resp.Success || resp.Message != "order created" {
		t.Fatalf("unexpected envelope %+v", resp)
	}
}

func TestOrderHandlerCreateRejectsMalformedBody(t *testing.T) {
	w := performRequest(t, http.MethodPost, "/orders", "/orders", NewOrderHandler(&testhelpers.CommerceFacadeStub{}).Create, asUser("user-1"), []byte("{"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.Success {
		t.Fatal("expected failure envelope")
	}
}

func TestOrderHandlerCreateMapsInsufficientStock(t *testing.T) {
	body, _ := json.Marshal(dto.CreateOrderRequest{
		Items:           []dto.CartItemRequest{{ProductID: "p1", Quantity: 1}},
		ShippingAddress: dto.ShippingAddressRequest{FullName: "a", Street: "b", City: "c"},
	})
	facade := &testhelpers.CommerceFacadeStub{CreateOrderFn: func(context.Context, string, model.Cart) (*model.Order, error) {
		return nil, domainErrors.InsufficientStockError{SKU: "LM-1", Requested: 2, Available: 1}
	}}

	w := performRequest(t, http.MethodPost, "/orders", "/orders", NewOrderHandler(facade).Create, asUser("user-1"), body)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestOrderHandlerGetHidesForeignOrders(t *testing.T) {
	facade := &testhelpers.CommerceFacadeStub{OrderFn: func(_ context.Context, orderID string) (*model.Order, error) {
		return &model.Order{ID: orderID, UserID: "someone-else"}, nil
	}}
	handler := NewOrderHandler(facade)

	w := performRequest(t, http.MethodGet, "/orders/:id", "/orders/o1", handler.Get, asUser("user-1"), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign order, got %d", w.Code)
	}

	w = performRequest(t, http.MethodGet, "/orders/:id", "/orders/o1", handler.Get, asAdmin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected admin to see any order, got %d", w.Code)
	}
}

func TestPaymentHandlerConfirm(t *testing.T) {
	poller := &testhelpers.PollingRegistryStub{}
	facade := &testhelpers.CommerceFacadeStub{ConfirmPaymentFn: func(_ context.Context, orderID string, result *model.PaymentResult, source model.StatusSource) (*model.Order, bool, error) {
		if source != model.StatusSourceManual {
			t.Fatalf("expected manual source, got %q", source)
		}
		return &model.Order{ID: orderID, IsPaid: true, PaymentResult: result}, false, nil
	}}

	body, _ := json.Marshal(dto.PaymentConfirmationRequest{PaymentID: "pay-1"})
	w := performRequest(t, http.MethodPost, "/orders/:id/pay", "/orders/o1/pay", NewPaymentHandler(facade, poller).ConfirmPayment, asAdmin, body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.Message != "order paid" {
		t.Fatalf("unexpected envelope %+v", resp)
	}
	if len(poller.Stopped) != 1 || poller.Stopped[0] != "o1" {
		t.Fatalf("expected polling stopped for o1, got %v", poller.Stopped)
	}
}

func TestPaymentHandlerConfirmAlreadyPaid(t *testing.T) {
	facade := &testhelpers.CommerceFacadeStub{ConfirmPaymentFn: func(_ context.Context, orderID string, _ *model.PaymentResult, _ model.StatusSource) (*model.Order, bool, error) {
		return &model.Order{ID: orderID, IsPaid: true}, true, nil
	}}

	w := performRequest(t, http.MethodPost, "/orders/:id/pay", "/orders/o1/pay", NewPaymentHandler(facade, &testhelpers.PollingRegistryStub{}).ConfirmPayment, asAdmin, []byte("{}"))
	if w.Code != http.StatusOK {
		t.Fatalf("already-paid must stay a success, got %d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.Message != "order already paid" {
		t.Fatalf("unexpected envelope %+v", resp)
	}
}

func TestPaymentHandlerConfirmInsufficientStock(t *testing.T) {
	facade := &testhelpers.CommerceFacadeStub{ConfirmPaymentFn: func(context.Context, string, *model.PaymentResult, model.StatusSource) (*model.Order, bool, error) {
		return nil, false, domainErrors.InsufficientStockError{SKU: "LM-1", Requested: 2, Available: 0}
	}}

	w := performRequest(t, http.MethodPost, "/orders/:id/pay", "/orders/o1/pay", NewPaymentHandler(facade, &testhelpers.PollingRegistryStub{}).ConfirmPayment, asAdmin, []byte("{}"))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	resp := decodeEnvelope(t, w)
	if resp.Success || resp.Message == "" {
		t.Fatalf("expected failing envelope naming the SKU, got %+v", resp)
	}
}

func TestPaymentHandlerInitiatePayWay(t *testing.T) {
	poller := &testhelpers.PollingRegistryStub{}
	facade := &testhelpers.CommerceFacadeStub{
		OrderFn: func(_ context.Context, orderID string) (*model.Order, error) {
			return &model.Order{ID: orderID, UserID: "user-1"}, nil
		},
	}

	body, _ := json.Marshal(dto.InitiatePayWayRequest{TransactionID: "tran-7"})
	w := performRequest(t, http.MethodPost, "/orders/:id/payway", "/orders/o1/payway", NewPaymentHandler(facade, poller).InitiatePayWay, asUser("user-1"), body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(poller.Started) != 1 || poller.Started[0] != "o1" {
		t.Fatalf("expected polling started for o1, got %v", poller.Started)
	}
}

func TestPaymentHandlerInitiatePayWayAlreadyPaid(t *testing.T) {
	poller := &testhelpers.PollingRegistryStub{}
	facade := &testhelpers.CommerceFacadeStub{
		OrderFn: func(_ context.Context, orderID string) (*model.Order, error) {
			return &model.Order{ID: orderID, UserID: "user-1", IsPaid: true}, nil
		},
	}

	body, _ := json.Marshal(dto.InitiatePayWayRequest{TransactionID: "tran-7"})
	w := performRequest(t, http.MethodPost, "/orders/:id/payway", "/orders/o1/payway", NewPaymentHandler(facade, poller).InitiatePayWay, asUser("user-1"), body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(poller.Started) != 0 {
		t.Fatal("paid order must not start polling")
	}
}

func TestAdminHandlerDeliverUnpaid(t *testing.T) {
	facade := &testhelpers.CommerceFacadeStub{MarkDeliveredFn: func(context.Context, string) (*model.Order, error) {
		return nil, domainErrors.ErrOrderNotPaid
	}}

	w := performRequest(t, http.MethodPost, "/orders/:id/deliver", "/orders/o1/deliver", NewAdminHandler(facade, &testhelpers.PollingRegistryStub{}).Deliver, asAdmin, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAdminHandlerDeleteLocked(t *testing.T) {
	facade := &testhelpers.CommerceFacadeStub{DeleteOrderFn: func(context.Context, string, string) (*model.Order, error) {
		return nil, domainErrors.ErrOrderLocked
	}}

	w := performRequest(t, http.MethodDelete, "/orders/:id", "/orders/o1", NewAdminHandler(facade, &testhelpers.PollingRegistryStub{}).Delete, asAdmin, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestAdminHandlerDeleteStopsPolling(t *testing.T) {
	poller := &testhelpers.PollingRegistryStub{}
	w := performRequest(t, http.MethodDelete, "/orders/:id", "/orders/o1", NewAdminHandler(&testhelpers.CommerceFacadeStub{}, poller).Delete, asAdmin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(poller.Stopped) != 1 {
		t.Fatalf("expected polling stopped, got %v", poller.Stopped)
	}
}

func TestAdminHandlerAppendNote(t *testing.T) {
	var noted string
	facade := &testhelpers.CommerceFacadeStub{AppendNoteFn: func(_ context.Context, orderID, author, text string) error {
		noted = orderID + "/" + author + "/" + text
		return nil
	}}

	body, _ := json.Marshal(dto.NoteRequest{Text: "call the customer"})
	w := performRequest(t, http.MethodPost, "/orders/:id/notes", "/orders/o1/notes", NewAdminHandler(facade, &testhelpers.PollingRegistryStub{}).AppendNote, asAdmin, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if noted != "o1/admin/call the customer" {
		t.Fatalf("unexpected note %q", noted)
	}
}

func TestHealthHandler(t *testing.T) {
	w := performRequest(t, http.MethodGet, "/healthz", "/healthz", NewHealthHandler(&testhelpers.HealthFacadeStub{}).Check, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = performRequest(t, http.MethodGet, "/healthz", "/healthz", NewHealthHandler(&testhelpers.HealthFacadeStub{Err: errors.New("down")}).Check, nil, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
