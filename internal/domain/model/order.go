package model

import "time"

// PaymentStatus describes the state of the external gateway payment attached to an order.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
)

// StatusSource identifies what produced a payment status history entry.
type StatusSource string

const (
	StatusSourceCallback StatusSource = "callback"
	StatusSourceManual   StatusSource = "manual"
	StatusSourceAutoPoll StatusSource = "auto_poll"
)

// OrderItem is a frozen snapshot of a product at order time. Product data
// can change after purchase, so nothing here is a live reference.
type OrderItem struct {
	ProductID        string
	Name             string
	Slug             string
	Image            string
	Category         string
	SKU              string
	Size             string
	Color            string
	Quantity         int
	Price            float64
	BasePrice        float64
	VariantModifiers []VariantModifier
}

// ShippingAddress holds delivery destination details.
type ShippingAddress struct {
	FullName string
	Phone    string
	Street   string
	City     string
	Province string
}

// AppliedPromotion captures the promotion attached to an order at creation time.
type AppliedPromotion struct {
	PromotionID    string
	Code           string
	DiscountAmount float64
	FreeShipping   bool
}

// PaymentResult is the opaque receipt returned by a payment confirmation.
type PaymentResult struct {
	ID         string
	Status     string
	PayerEmail string
}

// StatusEvent is one entry of the append-only gateway status history.
type StatusEvent struct {
	Status     PaymentStatus
	StatusCode int
	Source     StatusSource
	Details    string
	At         time.Time
}

// OrderNote is an append-only admin annotation on an order.
type OrderNote struct {
	Author    string
	Text      string
	CreatedAt time.Time
}

// Order is the central purchase record. Items and pricing are immutable after
// creation; only payment/delivery status fields and audit appendices mutate.
type Order struct {
	ID              string
	UserID          string
	Items           []OrderItem
	ShippingAddress ShippingAddress

	ItemsPrice     float64
	ShippingPrice  float64
	TaxPrice       float64
	DiscountAmount float64
	TotalPrice     float64

	AppliedPromotion *AppliedPromotion

	IsPaid        bool
	PaidAt        *time.Time
	PaymentResult *PaymentResult

	IsDelivered bool
	DeliveredAt *time.Time

	ExpectedDeliveryDate time.Time

	GatewayTransactionID string
	GatewayStatus        PaymentStatus
	GatewayStatusCode    *int
	CallbackReceived     bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Cart is the client-submitted checkout payload. Item prices inside it are
// untrusted and recomputed server-side before persisting.
type Cart struct {
	Items               []OrderItem
	ShippingAddress     ShippingAddress
	DeliveryOptionIndex *int
	AppliedPromotion    *AppliedPromotion
}
