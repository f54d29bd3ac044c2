package router

import (
	"github.com/labstack/echo/v4"

	"civicvoice/internal/adapter/api/middleware"
	"civicvoice/internal/infrastructure/ratelimit"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware, limiter *ratelimit.RateLimiter) {
	SetupAuthRouter(e)
	SetupUserRouter(e, authMiddleware)
	SetupLocationRouter(e)
	SetupGrievanceRouter(e, authMiddleware, limiter)
	SetupSocialRouter(e)
	SetupAdminRouter(e, authMiddleware, adminMiddleware, limiter)
	SetupWebSocketRouter(e, authMiddleware, adminMiddleware)
	SetupHealthRouter(e)
}
