package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"civicvoice/internal/adapter/api/handler"
	"civicvoice/internal/adapter/api/middleware"
	"civicvoice/internal/infrastructure/ratelimit"
)

func SetupGrievanceRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	grievanceHandler := handler.GetGrievanceHandler()

	grievances := e.Group("/v1/grievances")
	grievances.Use(authMiddleware.Authenticate)
	grievances.Use(authMiddleware.RequireVerifiedEmail)

	// Photos travel as base64 data URLs inside the JSON body.
	grievances.POST("", grievanceHandler.Submit,
		echomw.BodyLimit("2M"),
		middleware.RateLimit(limiter, ratelimit.ActionSubmitGrievance),
	)
	grievances.GET("/mine", grievanceHandler.ListMine)
	grievances.POST("/:id/verify", grievanceHandler.Verify)
	grievances.POST("/:id/reopen", grievanceHandler.Reopen)
}
