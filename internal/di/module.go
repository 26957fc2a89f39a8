package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/shopcore/internal/adapter/lease"
	"github.com/polkiloo/shopcore/internal/adapter/notify"
	"github.com/polkiloo/shopcore/internal/adapter/payway"
	"github.com/polkiloo/shopcore/internal/app"
	"github.com/polkiloo/shopcore/internal/config"
	"github.com/polkiloo/shopcore/internal/events"
	"github.com/polkiloo/shopcore/internal/logger"
	"github.com/polkiloo/shopcore/internal/server/http/handlers"
	"github.com/polkiloo/shopcore/internal/server/http/router"
	"github.com/polkiloo/shopcore/internal/storage/postgres"
	"github.com/polkiloo/shopcore/internal/usecase"
	"github.com/polkiloo/shopcore/internal/worker"
)

// Module assembles the full application graph.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		postgres.Module,
		lease.Module,
		payway.Module,
		events.Module,
		notify.Module,
		usecase.Module,
		router.Module,
		app.Module,
		fx.Provide(
			func(f *app.CommerceFacade) handlers.CommerceFacade { return f },
			func(p *worker.StatusPoller) handlers.PollingRegistry { return p },
			func(h app.HealthChecker) handlers.HealthFacade { return h },
		),
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
