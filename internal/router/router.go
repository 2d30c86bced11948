package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/RamaShankarRay/XGpt/internal/handler"
	"github.com/RamaShankarRay/XGpt/internal/middleware"
)

// Setup registers all routes.
func Setup(
	h *server.Hertz,
	completionHandler *handler.CompletionHandler,
	healthHandler *handler.HealthHandler,
) {
	h.Use(middleware.Recovery())
	h.Use(middleware.Logger())
	h.Use(middleware.CORS())

	h.GET("/ping", healthHandler.Ping)

	api := h.Group("/api")
	{
		api.POST("/chat", completionHandler.CreateCompletion)
		api.GET("/health", healthHandler.Health)
	}
}
