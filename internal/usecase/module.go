package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/shopcore/internal/config"
	"github.com/polkiloo/shopcore/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewPricingResolver,
	newOrderUseCase,
	NewReconciler,
	NewPaymentUseCase,
	NewDeliveryUseCase,
	NewPromotionUseCase,
)

type orderUseCaseParams struct {
	fx.In

	Factory repository.Factory
	Pricing *PricingResolver
	Config  *config.Config
	Logger  *slog.Logger
}

func newOrderUseCase(p orderUseCaseParams) *OrderUseCase {
	return NewOrderUseCase(p.Factory, p.Pricing, p.Config.TaxRate, p.Logger)
}
