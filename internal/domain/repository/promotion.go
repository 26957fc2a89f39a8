package repository

import (
	"context"

	"github.com/polkiloo/shopcore/internal/domain/model"
)

// PromotionRepository records promotion redemptions at most once per order.
type PromotionRepository interface {
	// RecordUsage inserts the usage row and increments the promotion's
	// redemption counter. Reports false without error when a usage row for
	// the same order id already exists.
	RecordUsage(ctx context.Context, usage model.PromotionUsage) (bool, error)
	UsageByOrder(ctx context.Context, orderID string) (*model.PromotionUsage, error)
}
