package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/shopcore/internal/config"
	"github.com/polkiloo/shopcore/internal/server/http/handlers"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Provide(newRouter)

type routerParams struct {
	fx.In

	Facade handlers.CommerceFacade
	Poller handlers.PollingRegistry
	Health handlers.HealthFacade
	Config *config.Config
	Logger *slog.Logger
}

func newRouter(p routerParams) *gin.Engine {
	return Setup(p.Facade, p.Poller, p.Health, p.Config.AdminKeyHash, p.Logger)
}
