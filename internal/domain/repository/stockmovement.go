package repository

import (
	"context"

	"github.com/polkiloo/shopcore/internal/domain/model"
)

// StockMovementRepository appends inventory audit rows.
type StockMovementRepository interface {
	Insert(ctx context.Context, movement model.StockMovement) error
	ListByProduct(ctx context.Context, productID string) ([]model.StockMovement, error)
}
