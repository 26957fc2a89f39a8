package handlers

import (
	"context"

	"github.com/polkiloo/shopcore/internal/domain/model"
)

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, userID string, cart model.Cart) (*model.Order, error)
	Order(ctx context.Context, orderID string) (*model.Order, error)
	OrdersByUser(ctx context.Context, userID string) ([]model.Order, error)
}

// PaymentFacade covers payment confirmation and gateway initiation.
type PaymentFacade interface {
	ConfirmPayment(ctx context.Context, orderID string, result *model.PaymentResult, source model.StatusSource) (*model.Order, bool, error)
	InitiateGatewayPayment(ctx context.Context, orderID, tranID string) (*model.Order, error)
}

// AdminFacade covers the privileged order lifecycle operations.
type AdminFacade interface {
	MarkDelivered(ctx context.Context, orderID string) (*model.Order, error)
	DeleteOrder(ctx context.Context, orderID, deletedBy string) (*model.Order, error)
	AppendNote(ctx context.Context, orderID, author, text string) error
}

// CommerceFacade aggregates the full set of operations used across handlers.
type CommerceFacade interface {
	OrderFacade
	PaymentFacade
	AdminFacade
}

// PollingRegistry registers and cancels gateway polling jobs.
type PollingRegistry interface {
	StartPollingForOrder(orderID, transactionID string)
	StopPollingForOrder(orderID string)
}

// HealthFacade reports backing store availability.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}
