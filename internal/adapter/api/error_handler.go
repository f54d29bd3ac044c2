package api

import (
	"github.com/labstack/echo/v4"

	"civicvoice/pkg/logger"
	"civicvoice/pkg/response"
)

// ErrorHandler renders errors returned from middleware (and echo's own 404
// and 405) in the same envelope the handlers use.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if rerr := response.Error(c, err); rerr != nil {
		logger.Error("failed to write error response: %v", rerr)
	}
}
