package router

import (
	"github.com/labstack/echo/v4"

	"civicvoice/internal/adapter/api/handler"
	"civicvoice/internal/adapter/api/middleware"
	"civicvoice/internal/infrastructure/ratelimit"
)

func SetupAdminRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware, limiter *ratelimit.RateLimiter) {
	adminHandler := handler.GetAdminHandler()

	admin := e.Group("/v1/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)

	admin.GET("/grievances", adminHandler.ListGrievances)
	admin.GET("/grievances/stats", adminHandler.Stats)
	admin.POST("/grievances/:id/resolve", adminHandler.Resolve)

	admin.POST("/insights", adminHandler.Insights, middleware.RateLimit(limiter, ratelimit.ActionAdminInsights))
	admin.POST("/social/trending/run", adminHandler.RunTrending)
}
