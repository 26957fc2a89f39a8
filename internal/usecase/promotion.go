package usecase

import (
	"context"

	"github.com/polkiloo/shopcore/internal/domain/model"
	"github.com/polkiloo/shopcore/internal/domain/repository"
)

// PromotionUseCase records promotion redemptions exactly once per order.
type PromotionUseCase struct {
	promotions repository.PromotionRepository
}

// NewPromotionUseCase constructs PromotionUseCase.
func NewPromotionUseCase(promotions repository.PromotionRepository) *PromotionUseCase {
	return &PromotionUseCase{promotions: promotions}
}

// RecordUsage writes the usage ledger row. A repeated call for the same
// order id reports created=false and no error: success either way.
func (u *PromotionUseCase) RecordUsage(ctx context.Context, usage model.PromotionUsage) (bool, error) {
	return u.promotions.RecordUsage(ctx, usage)
}

// UsageByOrder returns the ledger row for one order, if any.
func (u *PromotionUseCase) UsageByOrder(ctx context.Context, orderID string) (*model.PromotionUsage, error) {
	return u.promotions.UsageByOrder(ctx, orderID)
}
