package dto

import (
	"time"

	"github.com/polkiloo/shopcore/internal/domain/model"
)

// CartItemRequest is one client-submitted line item. The price is advisory;
// the server recomputes it.
type CartItemRequest struct {
	ProductID        string                   `json:"productId" binding:"required"`
	Name             string                   `json:"name"`
	Slug             string                   `json:"slug"`
	Image            string                   `json:"image"`
	Category         string                   `json:"category"`
	SKU              string                   `json:"sku"`
	Size             string                   `json:"size"`
	Color            string                   `json:"color"`
	Quantity         int                      `json:"qty" binding:"required"`
	Price            float64                  `json:"price"`
	VariantModifiers []VariantModifierRequest `json:"variantModifiers"`
}

// VariantModifierRequest selects a product variant by kind and value.
type VariantModifierRequest struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// ShippingAddressRequest is the delivery destination.
type ShippingAddressRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Phone    string `json:"phone"`
	Street   string `json:"street" binding:"required"`
	City     string `json:"city" binding:"required"`
	Province string `json:"province"`
}

// AppliedPromotionRequest carries a promotion validated upstream.
type AppliedPromotionRequest struct {
	PromotionID    string  `json:"promotionId"`
	Code           string  `json:"code"`
	DiscountAmount float64 `json:"discountAmount"`
	FreeShipping   bool    `json:"freeShipping"`
}

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	Items               []CartItemRequest        `json:"orderItems" binding:"required"`
	ShippingAddress     ShippingAddressRequest   `json:"shippingAddress" binding:"required"`
	DeliveryOptionIndex *int                     `json:"deliveryDateIndex"`
	AppliedPromotion    *AppliedPromotionRequest `json:"appliedPromotion"`
}

// Cart converts the request into the domain checkout payload.
func (r CreateOrderRequest) Cart() model.Cart {
	items := make([]model.OrderItem, 0, len(r.Items))
	for _, item := range r.Items {
		modifiers := make([]model.VariantModifier, 0, len(item.VariantModifiers))
		for _, m := range item.VariantModifiers {
			modifiers = append(modifiers, model.VariantModifier{Kind: m.Kind, Value: m.Value})
		}
		items = append(items, model.OrderItem{
			ProductID:        item.ProductID,
			Name:             item.Name,
			Slug:             item.Slug,
			Image:            item.Image,
			Category:         item.Category,
			SKU:              item.SKU,
			Size:             item.Size,
			Color:            item.Color,
			Quantity:         item.Quantity,
			Price:            item.Price,
			VariantModifiers: modifiers,
		})
	}

	cart := model.Cart{
		Items: items,
		ShippingAddress: model.ShippingAddress{
			FullName: r.ShippingAddress.FullName,
			Phone:    r.ShippingAddress.Phone,
			Street:   r.ShippingAddress.Street,
			City:     r.ShippingAddress.City,
			Province: r.ShippingAddress.Province,
		},
		DeliveryOptionIndex: r.DeliveryOptionIndex,
	}
	if r.AppliedPromotion != nil {
		cart.AppliedPromotion = &model.AppliedPromotion{
			PromotionID:    r.AppliedPromotion.PromotionID,
			Code:           r.AppliedPromotion.Code,
			DiscountAmount: r.AppliedPromotion.DiscountAmount,
			FreeShipping:   r.AppliedPromotion.FreeShipping,
		}
	}
	return cart
}

// OrderItemResponse mirrors the persisted line item snapshot.
type OrderItemResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	SKU       string  `json:"sku"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
	Quantity  int     `json:"qty"`
	Price     float64 `json:"price"`
	BasePrice float64 `json:"basePrice,omitempty"`
}

// OrderResponse is the public order representation.
type OrderResponse struct {
	ID                   string              `json:"id"`
	UserID               string              `json:"userId"`
	Items                []OrderItemResponse `json:"orderItems"`
	ItemsPrice           float64             `json:"itemsPrice"`
	ShippingPrice        float64             `json:"shippingPrice"`
	TaxPrice             float64             `json:"taxPrice"`
	DiscountAmount       float64             `json:"discountAmount,omitempty"`
	TotalPrice           float64             `json:"totalPrice"`
	IsPaid               bool                `json:"isPaid"`
	PaidAt               *time.Time          `json:"paidAt,omitempty"`
	IsDelivered          bool                `json:"isDelivered"`
	DeliveredAt          *time.Time          `json:"deliveredAt,omitempty"`
	ExpectedDeliveryDate time.Time           `json:"expectedDeliveryDate"`
	GatewayTransactionID string              `json:"gatewayTransactionId,omitempty"`
	GatewayStatus        string              `json:"gatewayStatus,omitempty"`
	CreatedAt            time.Time           `json:"createdAt"`
}

// ToOrderResponse converts the domain order into its public representation.
func ToOrderResponse(order *model.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			SKU:       item.SKU,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
			Price:     item.Price,
			BasePrice: item.BasePrice,
		})
	}
	return OrderResponse{
		ID:                   order.ID,
		UserID:               order.UserID,
		Items:                items,
		ItemsPrice:           order.ItemsPrice,
		ShippingPrice:        order.ShippingPrice,
		TaxPrice:             order.TaxPrice,
		DiscountAmount:       order.DiscountAmount,
		TotalPrice:           order.TotalPrice,
		IsPaid:               order.IsPaid,
		PaidAt:               order.PaidAt,
		IsDelivered:          order.IsDelivered,
		DeliveredAt:          order.DeliveredAt,
		ExpectedDeliveryDate: order.ExpectedDeliveryDate,
		GatewayTransactionID: order.GatewayTransactionID,
		GatewayStatus:        string(order.GatewayStatus),
		CreatedAt:            order.CreatedAt,
	}
}

// PaymentConfirmationRequest is the manual payment confirmation payload.
type PaymentConfirmationRequest struct {
	PaymentID  string `json:"paymentId"`
	Status     string `json:"status"`
	PayerEmail string `json:"payerEmail"`
}

// InitiatePayWayRequest binds a gateway transaction to the order.
type InitiatePayWayRequest struct {
	TransactionID string `json:"tranId" binding:"required"`
}

// NoteRequest appends an internal admin note.
type NoteRequest struct {
	Text string `json:"text" binding:"required"`
}
