package events

import (
	"log/slog"

	"github.com/polkiloo/shopcore/internal/domain/model"
)

// Notifier receives domain events for out-of-band delivery (email, bot).
// Implementations must tolerate failures internally; the dispatcher never
// inspects their outcome.
type Notifier interface {
	OrderCreated(order *model.Order)
	OrderPaid(order *model.Order)
	OrderDelivered(order *model.Order)
}

// Dispatcher decouples notification side effects from the transactional
// boundary of the pipeline: operations report events here and return;
// publishing and notifying happen on their own goroutines.
type Dispatcher struct {
	publisher Publisher
	notifier  Notifier
	logger    *slog.Logger
}

// NewDispatcher constructs the event dispatcher.
func NewDispatcher(publisher Publisher, notifier Notifier, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{publisher: publisher, notifier: notifier, logger: logger}
}

func (d *Dispatcher) async(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("notifier panic", slog.String("event", name), slog.Any("panic", r))
			}
		}()
		fn()
	}()
}

// OrderCreated emits the OrderCreated event and alerts staff.
func (d *Dispatcher) OrderCreated(order *model.Order) {
	d.publisher.Publish(TypeOrderCreated, order.ID, OrderCreatedPayload{
		OrderID:    order.ID,
		UserID:     order.UserID,
		ItemCount:  len(order.Items),
		TotalPrice: order.TotalPrice,
	})
	d.async(TypeOrderCreated, func() { d.notifier.OrderCreated(order) })
}

// OrderPaid emits the OrderPaid event, the purchase receipt and the paid
// notification.
func (d *Dispatcher) OrderPaid(order *model.Order) {
	payload := OrderPaidPayload{OrderID: order.ID, TotalPrice: order.TotalPrice}
	if order.PaymentResult != nil {
		payload.PaymentID = order.PaymentResult.ID
		payload.PayerEmail = order.PaymentResult.PayerEmail
	}
	d.publisher.Publish(TypeOrderPaid, order.ID, payload)
	d.async(TypeOrderPaid, func() { d.notifier.OrderPaid(order) })
}

// OrderDelivered emits the OrderDelivered event and the review request.
func (d *Dispatcher) OrderDelivered(order *model.Order) {
	d.publisher.Publish(TypeOrderDelivered, order.ID, OrderDeliveredPayload{OrderID: order.ID})
	d.async(TypeOrderDelivered, func() { d.notifier.OrderDelivered(order) })
}

// OrderDeleted emits the audit event for a permitted deletion.
func (d *Dispatcher) OrderDeleted(order *model.Order, deletedBy string) {
	d.publisher.Publish(TypeOrderDeleted, order.ID, OrderDeletedPayload{
		OrderID:    order.ID,
		DeletedBy:  deletedBy,
		TotalPrice: order.TotalPrice,
		WasPaid:    order.IsPaid,
		WasShipped: order.IsDelivered,
	})
}
