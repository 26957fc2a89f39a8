package test

import (
	"context"
	"sync"

	"github.com/polkiloo/shopcore/internal/domain/model"
)

// CommerceFacadeStub provides controllable behaviour for order endpoints.
type CommerceFacadeStub struct {
	CreateOrderFn      func(context.Context, string, model.Cart) (*model.Order, error)
	OrderFn            func(context.Context, string) (*model.Order, error)
	OrdersByUserFn     func(context.Context, string) ([]model.Order, error)
	ConfirmPaymentFn   func(context.Context, string, *model.PaymentResult, model.StatusSource) (*model.Order, bool, error)
	InitiateGatewayFn  func(context.Context, string, string) (*model.Order, error)
	MarkDeliveredFn    func(context.Context, string) (*model.Order, error)
	DeleteOrderFn      func(context.Context, string, string) (*model.Order, error)
	AppendNoteFn       func(context.Context, string, string, string) error
	CheckTransactionFn func(context.Context, string) (*model.GatewayTransaction, error)
	ConfirmGatewayFn   func(context.Context, string, *model.GatewayTransaction) error
	RecordStatusFn     func(context.Context, string, model.StatusEvent) error
}

// CreateOrder delegates to the override or returns a minimal order.
func (s *CommerceFacadeStub) CreateOrder(ctx context.Context, userID string, cart model.Cart) (*model.Order, error) {
	if s.CreateOrderFn != nil {
		return s.CreateOrderFn(ctx, userID, cart)
	}
	return &model.Order{ID: "order-1", UserID: userID, Items: cart.Items}, nil
}

// Order delegates to the override or returns a minimal order.
func (s *CommerceFacadeStub) Order(ctx context.Context, orderID string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, orderID)
	}
	return &model.Order{ID: orderID}, nil
}

// OrdersByUser delegates to the override or returns an empty list.
func (s *CommerceFacadeStub) OrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	if s.OrdersByUserFn != nil {
		return s.OrdersByUserFn(ctx, userID)
	}
	return nil, nil
}

// ConfirmPayment delegates to the override or reports a fresh payment.
func (s *CommerceFacadeStub) ConfirmPayment(ctx context.Context, orderID string, result *model.PaymentResult, source model.StatusSource) (*model.Order, bool, error) {
	if s.ConfirmPaymentFn != nil {
		return s.ConfirmPaymentFn(ctx, orderID, result, source)
	}
	return &model.Order{ID: orderID, IsPaid: true, PaymentResult: result}, false, nil
}

// InitiateGatewayPayment delegates to the override.
func (s *CommerceFacadeStub) InitiateGatewayPayment(ctx context.Context, orderID, tranID string) (*model.Order, error) {
	if s.InitiateGatewayFn != nil {
		return s.InitiateGatewayFn(ctx, orderID, tranID)
	}
	return &model.Order{ID: orderID, GatewayTransactionID: tranID}, nil
}

// MarkDelivered delegates to the override.
func (s *CommerceFacadeStub) MarkDelivered(ctx context.Context, orderID string) (*model.Order, error) {
	if s.MarkDeliveredFn != nil {
		return s.MarkDeliveredFn(ctx, orderID)
	}
	return &model.Order{ID: orderID, IsPaid: true, IsDelivered: true}, nil
}

// DeleteOrder delegates to the override.
func (s *CommerceFacadeStub) DeleteOrder(ctx context.Context, orderID, deletedBy string) (*model.Order, error) {
	if s.DeleteOrderFn != nil {
		return s.DeleteOrderFn(ctx, orderID, deletedBy)
	}
	return &model.Order{ID: orderID}, nil
}

// AppendNote delegates to the override.
func (s *CommerceFacadeStub) AppendNote(ctx context.Context, orderID, author, text string) error {
	if s.AppendNoteFn != nil {
		return s.AppendNoteFn(ctx, orderID, author, text)
	}
	return nil
}

// CheckTransaction delegates to the override or reports success.
func (s *CommerceFacadeStub) CheckTransaction(ctx context.Context, tranID string) (*model.GatewayTransaction, error) {
	if s.CheckTransactionFn != nil {
		return s.CheckTransactionFn(ctx, tranID)
	}
	return &model.GatewayTransaction{TranID: tranID, StatusCode: model.GatewayCodeSuccess}, nil
}

// ConfirmGatewayPayment delegates to the override.
func (s *CommerceFacadeStub) ConfirmGatewayPayment(ctx context.Context, orderID string, tran *model.GatewayTransaction) error {
	if s.ConfirmGatewayFn != nil {
		return s.ConfirmGatewayFn(ctx, orderID, tran)
	}
	return nil
}

// RecordGatewayStatus delegates to the override.
func (s *CommerceFacadeStub) RecordGatewayStatus(ctx context.Context, orderID string, event model.StatusEvent) error {
	if s.RecordStatusFn != nil {
		return s.RecordStatusFn(ctx, orderID, event)
	}
	return nil
}

// PollingRegistryStub records polling registrations.
type PollingRegistryStub struct {
	mu      sync.Mutex
	Started []string
	Stopped []string
}

// StartPollingForOrder records the registration.
func (s *PollingRegistryStub) StartPollingForOrder(orderID, transactionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Started = append(s.Started, orderID)
}

// StopPollingForOrder records the deregistration.
func (s *PollingRegistryStub) StopPollingForOrder(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stopped = append(s.Stopped, orderID)
}

// HealthFacadeStub reports a configurable health state.
type HealthFacadeStub struct {
	Err error
}

// HealthCheck returns the configured error.
func (s *HealthFacadeStub) HealthCheck(context.Context) error { return s.Err }
