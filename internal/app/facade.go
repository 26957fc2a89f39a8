package app

import (
	"context"

	"github.com/polkiloo/shopcore/internal/adapter/payway"
	"github.com/polkiloo/shopcore/internal/domain/model"
	"github.com/polkiloo/shopcore/internal/events"
	"github.com/polkiloo/shopcore/internal/usecase"
)

// CommerceFacade aggregates the order pipeline behind one application
// surface. Side effects (events, notifications) are fired here, after the
// owning operation has committed, never inside the use cases themselves.
type CommerceFacade struct {
	orders     *usecase.OrderUseCase
	payments   *usecase.PaymentUseCase
	deliveries *usecase.DeliveryUseCase
	promotions *usecase.PromotionUseCase
	gateway    payway.Client
	dispatcher *events.Dispatcher
}

// NewCommerceFacade constructs the application facade.
func NewCommerceFacade(
	orders *usecase.OrderUseCase,
	payments *usecase.PaymentUseCase,
	deliveries *usecase.DeliveryUseCase,
	promotions *usecase.PromotionUseCase,
	gateway payway.Client,
	dispatcher *events.Dispatcher,
) *CommerceFacade {
	return &CommerceFacade{
		orders:     orders,
		payments:   payments,
		deliveries: deliveries,
		promotions: promotions,
		gateway:    gateway,
		dispatcher: dispatcher,
	}
}

// CreateOrder runs the order creation pipeline and emits the created event.
func (f *CommerceFacade) CreateOrder(ctx context.Context, userID string, cart model.Cart) (*model.Order, error) {
	order, err := f.orders.Create(ctx, userID, cart)
	if err != nil {
		return nil, err
	}
	f.dispatcher.OrderCreated(order)
	return order, nil
}

// Order fetches one order with its items.
func (f *CommerceFacade) Order(ctx context.Context, orderID string) (*model.Order, error) {
	return f.orders.Get(ctx, orderID)
}

// OrdersByUser lists the user's orders.
func (f *CommerceFacade) OrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return f.orders.ListByUser(ctx, userID)
}

// ConfirmPayment reconciles a payment confirmation from a manual admin
// action or a gateway callback. An already-paid order is an idempotent
// success and fires no events.
func (f *CommerceFacade) ConfirmPayment(ctx context.Context, orderID string, result *model.PaymentResult, source model.StatusSource) (*model.Order, bool, error) {
	order, alreadyPaid, err := f.payments.MarkPaid(ctx, orderID, result)
	if err != nil {
		return nil, false, err
	}
	if alreadyPaid {
		return order, true, nil
	}
	_ = f.payments.RecordGatewayStatus(ctx, orderID, model.StatusEvent{
		Status:     model.PaymentStatusCompleted,
		StatusCode: model.GatewayCodeSuccess,
		Source:     source,
		Details:    "payment confirmed",
	})
	f.dispatcher.OrderPaid(order)
	return order, false, nil
}

// InitiateGatewayPayment binds the gateway transaction id to the order. The
// caller is responsible for registering the polling job.
func (f *CommerceFacade) InitiateGatewayPayment(ctx context.Context, orderID, tranID string) (*model.Order, error) {
	return f.payments.InitiateGatewayPayment(ctx, orderID, tranID)
}

// CheckTransaction queries the payment gateway for a transaction status.
func (f *CommerceFacade) CheckTransaction(ctx context.Context, tranID string) (*model.GatewayTransaction, error) {
	return f.gateway.CheckTransaction(ctx, tranID)
}

// ConfirmGatewayPayment reconciles a gateway-confirmed payment on behalf of
// the status poller. Amount verification happens in the poller before this
// call.
func (f *CommerceFacade) ConfirmGatewayPayment(ctx context.Context, orderID string, tran *model.GatewayTransaction) error {
	result := &model.PaymentResult{
		ID:         tran.TranID,
		Status:     string(tran.Status()),
		PayerEmail: tran.PayerEmail,
	}
	order, alreadyPaid, err := f.payments.MarkPaid(ctx, orderID, result)
	if err != nil {
		return err
	}
	if alreadyPaid {
		return nil
	}
	_ = f.payments.RecordGatewayStatus(ctx, orderID, model.StatusEvent{
		Status:     model.PaymentStatusCompleted,
		StatusCode: tran.StatusCode,
		Source:     model.StatusSourceAutoPoll,
		Details:    "payment confirmed by gateway polling",
	})
	f.dispatcher.OrderPaid(order)
	return nil
}

// RecordGatewayStatus appends a gateway status observation to the order's
// history.
func (f *CommerceFacade) RecordGatewayStatus(ctx context.Context, orderID string, event model.StatusEvent) error {
	return f.payments.RecordGatewayStatus(ctx, orderID, event)
}

// MarkDelivered finalizes delivery and emits the delivered event.
func (f *CommerceFacade) MarkDelivered(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := f.deliveries.MarkDelivered(ctx, orderID)
	if err != nil {
		return nil, err
	}
	f.dispatcher.OrderDelivered(order)
	return order, nil
}

// DeleteOrder removes an order under the deletion policy and emits the
// audit event.
func (f *CommerceFacade) DeleteOrder(ctx context.Context, orderID, deletedBy string) (*model.Order, error) {
	order, err := f.orders.Delete(ctx, orderID, deletedBy)
	if err != nil {
		return nil, err
	}
	f.dispatcher.OrderDeleted(order, deletedBy)
	return order, nil
}

// AppendNote attaches an internal admin note to an order.
func (f *CommerceFacade) AppendNote(ctx context.Context, orderID, author, text string) error {
	return f.orders.AppendNote(ctx, orderID, author, text)
}

// PromotionUsage returns the usage ledger row recorded for an order.
func (f *CommerceFacade) PromotionUsage(ctx context.Context, orderID string) (*model.PromotionUsage, error) {
	return f.promotions.UsageByOrder(ctx, orderID)
}
