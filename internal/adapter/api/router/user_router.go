package router

import (
	"github.com/labstack/echo/v4"

	"civicvoice/internal/adapter/api/handler"
	"civicvoice/internal/adapter/api/middleware"
)

func SetupUserRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	userHandler := handler.GetUserHandler()

	users := e.Group("/v1/users")
	users.Use(authMiddleware.Authenticate)

	users.GET("/me", userHandler.GetMe)
}
