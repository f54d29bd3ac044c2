package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	ws "civicvoice/internal/infrastructure/websocket"
	"civicvoice/internal/usecase"
)

type HealthHandler struct {
	authUseCase *usecase.AuthUseCase
	wsManager   *ws.Manager
}

var healthHandler *HealthHandler

func NewHealthHandler(authUseCase *usecase.AuthUseCase, wsManager *ws.Manager) *HealthHandler {
	return &HealthHandler{
		authUseCase: authUseCase,
		wsManager:   wsManager,
	}
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "Server is running",
		"time":        time.Now().Format(time.RFC3339),
		"subscribers": h.wsManager.Count(""),
	})
}

func (h *HealthHandler) CheckFirebaseHealth(c echo.Context) error {
	if err := h.authUseCase.CheckProvider(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "Firebase Auth connection failed",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "Firebase Auth connected successfully",
	})
}
