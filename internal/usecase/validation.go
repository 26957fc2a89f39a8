package usecase

import (
	"fmt"
	"time"

	domainErrors "github.com/polkiloo/shopcore/internal/domain/errors"
	"github.com/polkiloo/shopcore/internal/domain/model"
)

// ValidateOrder checks the composed order against the persistence schema
// before anything is written.
func ValidateOrder(order *model.Order, now time.Time) error {
	if len(order.Items) == 0 {
		return fmt.Errorf("%w: order has no items", domainErrors.ErrInvalidOrder)
	}
	for _, item := range order.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: non-positive quantity for %s", domainErrors.ErrInvalidOrder, item.ProductID)
		}
		if item.Price < 0 || Round2(item.Price) != item.Price {
			return fmt.Errorf("%w: item price must be a two-decimal amount", domainErrors.ErrInvalidOrder)
		}
	}

	addr := order.ShippingAddress
	if addr.FullName == "" || addr.Street == "" || addr.City == "" {
		return fmt.Errorf("%w: incomplete shipping address", domainErrors.ErrInvalidOrder)
	}

	if !order.ExpectedDeliveryDate.After(now) {
		return fmt.Errorf("%w: expected delivery date must be in the future", domainErrors.ErrInvalidOrder)
	}

	for _, amount := range []float64{order.ItemsPrice, order.ShippingPrice, order.TaxPrice, order.DiscountAmount, order.TotalPrice} {
		if Round2(amount) != amount {
			return fmt.Errorf("%w: totals must be two-decimal amounts", domainErrors.ErrInvalidOrder)
		}
	}

	expected := Round2(order.ItemsPrice + order.ShippingPrice + order.TaxPrice - order.DiscountAmount)
	if order.TotalPrice != expected {
		return fmt.Errorf("%w: total %0.2f does not match components %0.2f", domainErrors.ErrInvalidOrder, order.TotalPrice, expected)
	}

	return nil
}
