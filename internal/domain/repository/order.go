package repository

import (
	"context"

	"github.com/polkiloo/shopcore/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
//
// Create persists the order, its item snapshots and, when a promotion is
// attached, the promotion usage row inside a single transaction.
// CreateBestEffort is the non-transactional variant: the order is written
// first and the usage row afterwards, outside any transaction boundary.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	CreateBestEffort(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)

	// ReconcilePayment flips the paid flag, decrements stock and writes SALE
	// movements for every line item in one transaction. Returns
	// domainErrors.ErrAlreadyPaid when the conditional update matched nothing
	// and an InsufficientStockError when any decrement would go negative.
	ReconcilePayment(ctx context.Context, orderID string, result *model.PaymentResult) error

	// SetPaid conditionally marks the order paid outside a transaction.
	// Reports false without error when the order was already paid.
	SetPaid(ctx context.Context, orderID string, result *model.PaymentResult) (bool, error)
	// RevertPaid clears the paid flag; compensating action for the fallback path.
	RevertPaid(ctx context.Context, orderID string) error

	// MarkDelivered sets the delivered flag gated on the paid flag.
	MarkDelivered(ctx context.Context, orderID string) error

	// Delete removes an order unless it is paid and undelivered.
	Delete(ctx context.Context, orderID string) (*model.Order, error)

	SetGatewayTransaction(ctx context.Context, orderID, tranID string) error
	AppendStatusHistory(ctx context.Context, orderID string, event model.StatusEvent) error
	StatusHistory(ctx context.Context, orderID string) ([]model.StatusEvent, error)
	AppendNote(ctx context.Context, orderID string, note model.OrderNote) error
}
