package router

import (
	"github.com/labstack/echo/v4"

	"civicvoice/internal/adapter/api/handler"
	"civicvoice/internal/adapter/api/middleware"
)

// SetupWebSocketRouter sets up the live subscription routes. Browsers cannot
// set headers on the upgrade request, so the ID token comes in ?token=.
func SetupWebSocketRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	wsHandler := handler.GetWebSocketHandler()

	ws := e.Group("/v1/ws")
	ws.GET("/social", wsHandler.SocialFeed)
	ws.GET("/grievances", wsHandler.MyGrievances, authMiddleware.Authenticate)
	ws.GET("/admin/grievances", wsHandler.AdminGrievances, authMiddleware.Authenticate, adminMiddleware.AdminOnly)
}
