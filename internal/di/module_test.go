package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/shopcore/internal/adapter/payway"
	"github.com/polkiloo/shopcore/internal/app"
	"github.com/polkiloo/shopcore/internal/config"
	"github.com/polkiloo/shopcore/internal/domain/repository"
	"github.com/polkiloo/shopcore/internal/storage/postgres"
	"github.com/polkiloo/shopcore/internal/test"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:        ":0",
		DatabaseURI:       "postgres://stub",
		GatewayBaseURL:    "https://gateway.example.com",
		GatewayMerchantID: "merchant",
		GatewayAPIKey:     "key",
		GatewayTimeout:    time.Second,
		TaxRate:           0.069,
		ShutdownTimeout:   time.Millisecond,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	factory := test.NewFactoryStub()

	var facade *app.CommerceFacade
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(repository.Factory(factory)),
			fx.Replace(repository.OrderRepository(factory.OrderRepo)),
			fx.Replace(repository.ProductRepository(factory.ProductRepo)),
			fx.Replace(repository.StockMovementRepository(factory.MovementRepo)),
			fx.Replace(repository.PromotionRepository(factory.PromotionRepo)),
			fx.Replace(repository.SettingsRepository(factory.SettingsRepo)),
			fx.Replace(payway.Client(&test.CommerceFacadeStub{})),
		),
		fx.Populate(&facade),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil {
		t.Fatal("expected commerce facade instance")
	}
}
