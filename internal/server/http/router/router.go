package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/shopcore/internal/server/http/handlers"
	"github.com/polkiloo/shopcore/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(
	facade handlers.CommerceFacade,
	poller handlers.PollingRegistry,
	health handlers.HealthFacade,
	adminKeyHash string,
	logger *slog.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	orderHandler := handlers.NewOrderHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade, poller)
	adminHandler := handlers.NewAdminHandler(facade, poller)
	healthHandler := handlers.NewHealthHandler(health)

	engine.GET("/healthz", healthHandler.Check)

	api := engine.Group("/api")

	user := api.Group("")
	user.Use(middleware.UserRequired())
	user.POST("/orders", orderHandler.Create)
	user.GET("/orders", orderHandler.List)
	user.GET("/orders/:id", orderHandler.Get)
	user.POST("/orders/:id/payway", paymentHandler.InitiatePayWay)

	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired(adminKeyHash))
	admin.GET("/orders/:id", orderHandler.Get)
	admin.POST("/orders/:id/pay", paymentHandler.ConfirmPayment)
	admin.POST("/orders/:id/deliver", adminHandler.Deliver)
	admin.POST("/orders/:id/notes", adminHandler.AppendNote)
	admin.DELETE("/orders/:id", adminHandler.Delete)

	return engine
}
