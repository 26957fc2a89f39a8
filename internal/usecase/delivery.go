package usecase

import (
	"context"

	"github.com/polkiloo/shopcore/internal/domain/model"
	"github.com/polkiloo/shopcore/internal/domain/repository"
)

// DeliveryUseCase transitions a paid order to delivered.
type DeliveryUseCase struct {
	orders repository.OrderRepository
}

// NewDeliveryUseCase constructs DeliveryUseCase.
func NewDeliveryUseCase(orders repository.OrderRepository) *DeliveryUseCase {
	return &DeliveryUseCase{orders: orders}
}

// MarkDelivered sets the delivered flag. Fails with ErrOrderNotPaid on an
// unpaid order; re-delivering a delivered order is an idempotent success.
// Delivery never touches inventory.
func (u *DeliveryUseCase) MarkDelivered(ctx context.Context, orderID string) (*model.Order, error) {
	if err := u.orders.MarkDelivered(ctx, orderID); err != nil {
		return nil, err
	}
	return u.orders.GetByID(ctx, orderID)
}
