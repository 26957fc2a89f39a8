package model

import "time"

// Promotion is a redeemable discount code with a redemption counter.
type Promotion struct {
	ID        string
	Code      string
	UsedCount int
}

// PromotionUsage records one redemption of a promotion. Uniqueness on
// OrderID is the idempotency guard against double-counting on retries.
type PromotionUsage struct {
	ID             int64
	PromotionID    string
	UserID         string
	OrderID        string
	Code           string
	DiscountAmount float64
	FreeShipping   bool
	CreatedAt      time.Time
}
