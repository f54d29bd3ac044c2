package router

import (
	"github.com/labstack/echo/v4"

	"civicvoice/internal/adapter/api/handler"
)

func SetupSocialRouter(e *echo.Echo) {
	socialHandler := handler.GetSocialHandler()

	e.GET("/v1/social/posts", socialHandler.ListPosts)
}
