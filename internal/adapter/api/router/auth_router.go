package router

import (
	"github.com/labstack/echo/v4"

	"civicvoice/internal/adapter/api/handler"
)

// SetupAuthRouter initializes auth routes
func SetupAuthRouter(e *echo.Echo) {
	authHandler := handler.GetAuthHandler()

	auth := e.Group("/v1/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/admin/login", authHandler.AdminLogin)
	auth.POST("/refresh", authHandler.RefreshToken)
}
