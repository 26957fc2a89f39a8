package repository

import (
	"context"

	"github.com/polkiloo/shopcore/internal/domain/model"
)

// ProductRepository exposes the catalog state the pipeline reads and the
// atomic stock operations it performs.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// DecrementStock atomically subtracts quantity from stock and bumps the
	// sales counter, rejecting the update when it would drive stock negative.
	// Returns the stock value before and after the decrement.
	DecrementStock(ctx context.Context, productID string, quantity int) (previous, current int, err error)

	// IncrementStock adds quantity back; compensating action for reverts.
	IncrementStock(ctx context.Context, productID string, quantity int) (previous, current int, err error)
}
