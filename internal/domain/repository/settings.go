package repository

import (
	"context"

	"github.com/polkiloo/shopcore/internal/domain/model"
)

// SettingsRepository reads merchant configuration owned elsewhere.
type SettingsRepository interface {
	DeliveryOptions(ctx context.Context) ([]model.DeliveryOption, error)
}
