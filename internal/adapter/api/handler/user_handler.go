package handler

import (
	"github.com/labstack/echo/v4"

	"civicvoice/internal/domain/entity"
	"civicvoice/internal/usecase"
	"civicvoice/pkg/errors"
	"civicvoice/pkg/response"
)

type UserHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewUserHandler(authUseCase *usecase.AuthUseCase) *UserHandler {
	return &UserHandler{
		authUseCase: authUseCase,
	}
}

// GetMe returns the profile used to pre-fill the grievance form.
func (h *UserHandler) GetMe(c echo.Context) error {
	uid := c.Get("uid").(string)
	email, _ := c.Get("email").(string)

	profile, err := h.authUseCase.GetProfile(c.Request().Context(), uid)
	if err != nil {
		if !errors.IsNotFound(err) {
			return response.Error(c, err)
		}
		profile = &entity.UserProfile{ID: uid, Email: email}
	}

	return response.Success(c, map[string]interface{}{
		"profile":        profile,
		"is_admin":       h.authUseCase.IsAdmin(email),
		"email_verified": c.Get("email_verified"),
	})
}
