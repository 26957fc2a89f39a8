package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/shopcore/internal/domain/errors"
	"github.com/polkiloo/shopcore/internal/domain/model"
	"github.com/polkiloo/shopcore/internal/domain/repository"
)

// PricingResolver recomputes authoritative item prices from catalog state.
// Client-submitted prices are never trusted; mismatches are overridden
// silently so a stale client cannot block checkout.
type PricingResolver struct {
	products repository.ProductRepository
	logger   *slog.Logger
	now      func() time.Time
}

// NewPricingResolver constructs PricingResolver.
func NewPricingResolver(products repository.ProductRepository, logger *slog.Logger) *PricingResolver {
	return &PricingResolver{products: products, logger: logger, now: time.Now}
}

// Resolve returns the cart items with server-computed prices. The base price
// and the catalog-sourced variant modifiers are preserved on each item for
// audit and display.
func (r *PricingResolver) Resolve(ctx context.Context, items []model.OrderItem) ([]model.OrderItem, error) {
	resolved := make([]model.OrderItem, 0, len(items))
	now := r.now()

	for _, item := range items {
		product, err := r.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				// Best-effort degrade: keep the client line as submitted.
				r.logger.Warn("product missing during pricing, keeping client item",
					slog.String("product_id", item.ProductID))
				resolved = append(resolved, item)
				continue
			}
			return nil, err
		}

		base := effectivePrice(product, now)
		effective := base
		modifiers := make([]model.VariantModifier, 0, len(item.VariantModifiers))
		for _, selected := range item.VariantModifiers {
			catalog, ok := findVariant(product.Variants, selected)
			if !ok {
				r.logger.Warn("unknown variant selection ignored",
					slog.String("product_id", item.ProductID),
					slog.String("kind", selected.Kind), slog.String("value", selected.Value))
				continue
			}
			effective += catalog.PriceModifier
			modifiers = append(modifiers, catalog)
		}
		effective = Round2(effective)

		if !amountsMatch(item.Price, effective) {
			r.logger.Warn("client price mismatch, overriding with server price",
				slog.String("product_id", item.ProductID),
				slog.Float64("client", item.Price),
				slog.Float64("server", effective))
		}

		item.Price = effective
		item.BasePrice = base
		item.VariantModifiers = modifiers
		item.Name = product.Name
		item.Slug = product.Slug
		item.Image = product.Image
		item.Category = product.Category
		item.SKU = product.SKU
		resolved = append(resolved, item)
	}

	return resolved, nil
}

// effectivePrice applies the sale window: the catalog price field is the
// sale price, listPrice the regular one. Outside the window the regular
// price wins; a product without a window always sells at price.
func effectivePrice(p *model.Product, now time.Time) float64 {
	if p.SaleStartDate != nil && p.SaleEndDate != nil && !p.OnSale(now) && p.ListPrice > 0 {
		return p.ListPrice
	}
	return p.Price
}

func findVariant(catalog []model.VariantModifier, selected model.VariantModifier) (model.VariantModifier, bool) {
	for _, v := range catalog {
		if v.Kind == selected.Kind && v.Value == selected.Value {
			return v, true
		}
	}
	return model.VariantModifier{}, false
}
