package router

import (
	"github.com/labstack/echo/v4"

	"civicvoice/internal/adapter/api/handler"
)

func SetupLocationRouter(e *echo.Echo) {
	locationHandler := handler.GetLocationHandler()

	e.GET("/v1/locations/pincode/:pincode", locationHandler.LookupPincode)
}
