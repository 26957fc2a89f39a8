package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/shopcore/internal/domain/errors"
	"github.com/polkiloo/shopcore/internal/domain/model"
	"github.com/polkiloo/shopcore/internal/domain/repository"
)

const defaultDeliveryDays = 7

// OrderUseCase turns a client cart into a persisted order.
type OrderUseCase struct {
	orders     repository.OrderRepository
	settings   repository.SettingsRepository
	pricing    *PricingResolver
	taxRate    float64
	supportsTx bool
	logger     *slog.Logger
	now        func() time.Time
}

// NewOrderUseCase constructs OrderUseCase. The transaction capability of the
// factory decides the persistence strategy up front.
func NewOrderUseCase(factory repository.Factory, pricing *PricingResolver, taxRate float64, logger *slog.Logger) *OrderUseCase {
	return &OrderUseCase{
		orders:     factory.Orders(),
		settings:   factory.Settings(),
		pricing:    pricing,
		taxRate:    taxRate,
		supportsTx: factory.SupportsTransactions(),
		logger:     logger,
		now:        time.Now,
	}
}

// Create revalidates pricing, applies promotion math and persists the order
// together with its promotion usage record.
func (u *OrderUseCase) Create(ctx context.Context, userID string, cart model.Cart) (*model.Order, error) {
	if userID == "" {
		return nil, domainErrors.ErrNotAuthenticated
	}

	items, err := u.pricing.Resolve(ctx, cart.Items)
	if err != nil {
		return nil, err
	}

	now := u.now()
	shippingPrice, expectedDelivery, err := u.resolveDelivery(ctx, cart.DeliveryOptionIndex, now)
	if err != nil {
		return nil, err
	}

	var itemsPrice float64
	for _, item := range items {
		itemsPrice += item.Price * float64(item.Quantity)
	}
	itemsPrice = Round2(itemsPrice)

	var discount float64
	if cart.AppliedPromotion != nil {
		// Discount amounts were validated by promotion-code validation
		// upstream; they are applied, not recomputed, here.
		discount = Round2(cart.AppliedPromotion.DiscountAmount)
		if cart.AppliedPromotion.FreeShipping {
			shippingPrice = 0
		}
	}

	taxPrice := Round2(itemsPrice * u.taxRate)

	order := &model.Order{
		ID:                   uuid.NewString(),
		UserID:               userID,
		Items:                items,
		ShippingAddress:      cart.ShippingAddress,
		ItemsPrice:           itemsPrice,
		ShippingPrice:        shippingPrice,
		TaxPrice:             taxPrice,
		DiscountAmount:       discount,
		TotalPrice:           Round2(itemsPrice + shippingPrice + taxPrice - discount),
		AppliedPromotion:     cart.AppliedPromotion,
		ExpectedDeliveryDate: expectedDelivery,
	}

	if err := ValidateOrder(order, now); err != nil {
		return nil, err
	}

	if u.supportsTx {
		err = u.orders.Create(ctx, order)
		if errors.Is(err, domainErrors.ErrNoTransactions) {
			err = u.orders.CreateBestEffort(ctx, order)
		}
	} else {
		err = u.orders.CreateBestEffort(ctx, order)
	}
	if err != nil {
		return nil, err
	}

	return order, nil
}

// resolveDelivery selects the configured delivery option by index, the last
// (cheapest) option being the default. With no options configured shipping
// is excluded from the total.
func (u *OrderUseCase) resolveDelivery(ctx context.Context, index *int, now time.Time) (float64, time.Time, error) {
	options, err := u.settings.DeliveryOptions(ctx)
	if err != nil {
		return 0, time.Time{}, err
	}
	if len(options) == 0 {
		u.logger.Warn("no delivery options configured, shipping excluded from total")
		return 0, now.AddDate(0, 0, defaultDeliveryDays), nil
	}

	selected := options[len(options)-1]
	if index != nil && *index >= 0 && *index < len(options) {
		selected = options[*index]
	}
	return selected.ShippingPrice, now.AddDate(0, 0, selected.DaysToDeliver), nil
}

// Get returns one order with its items.
func (u *OrderUseCase) Get(ctx context.Context, orderID string) (*model.Order, error) {
	return u.orders.GetByID(ctx, orderID)
}

// ListByUser returns the user's orders, newest first.
func (u *OrderUseCase) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return u.orders.ListByUser(ctx, userID)
}

// Delete removes an order unless it is paid and undelivered. Permitted
// deletions are audit-logged with the order's value and status.
func (u *OrderUseCase) Delete(ctx context.Context, orderID, deletedBy string) (*model.Order, error) {
	order, err := u.orders.Delete(ctx, orderID)
	if err != nil {
		return nil, err
	}
	u.logger.Info("order deleted",
		slog.String("order_id", order.ID),
		slog.String("deleted_by", deletedBy),
		slog.Float64("total_price", order.TotalPrice),
		slog.Bool("was_paid", order.IsPaid),
		slog.Bool("was_delivered", order.IsDelivered))
	return order, nil
}

// AppendNote attaches an admin annotation to an order.
func (u *OrderUseCase) AppendNote(ctx context.Context, orderID, author, text string) error {
	return u.orders.AppendNote(ctx, orderID, model.OrderNote{Author: author, Text: text})
}
