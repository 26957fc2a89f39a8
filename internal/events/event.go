package events

import (
	"encoding/json"
	"time"
)

// Event types emitted by the order pipeline.
const (
	TypeOrderCreated   = "OrderCreated"
	TypeOrderPaid      = "OrderPaid"
	TypeOrderDelivered = "OrderDelivered"
	TypeOrderDeleted   = "OrderDeleted"
)

// Envelope wraps every published event. Partition key is the order id so
// all events of one order keep their relative order.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Producer   string          `json:"producer"`
	OrderID    string          `json:"order_id"`
	Payload    json.RawMessage `json:"payload"`
}

// OrderCreatedPayload carries the facts notifiers need about a new order.
type OrderCreatedPayload struct {
	OrderID    string  `json:"order_id"`
	UserID     string  `json:"user_id"`
	ItemCount  int     `json:"item_count"`
	TotalPrice float64 `json:"total_price"`
}

// OrderPaidPayload is emitted after a successful payment reconciliation.
type OrderPaidPayload struct {
	OrderID    string  `json:"order_id"`
	TotalPrice float64 `json:"total_price"`
	PaymentID  string  `json:"payment_id,omitempty"`
	PayerEmail string  `json:"payer_email,omitempty"`
}

// OrderDeliveredPayload is emitted when an order is marked delivered.
type OrderDeliveredPayload struct {
	OrderID string `json:"order_id"`
}

// OrderDeletedPayload is the audit record of a permitted order deletion.
type OrderDeletedPayload struct {
	OrderID     string  `json:"order_id"`
	DeletedBy   string  `json:"deleted_by"`
	TotalPrice  float64 `json:"total_price"`
	WasPaid     bool    `json:"was_paid"`
	WasShipped  bool    `json:"was_shipped"`
}
