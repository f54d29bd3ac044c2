package handler

import (
	"github.com/labstack/echo/v4"

	"civicvoice/internal/usecase"
	"civicvoice/pkg/errors"
	"civicvoice/pkg/response"
)

type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.Register(c.Request().Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]interface{}{
		"user":                    result.User,
		"verification_email_sent": result.VerificationEmailSent,
		"message":                 "Account created! A verification email has been sent to " + result.User.Email + ". Please verify before logging in.",
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}

func (h *AuthHandler) AdminLogin(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.AdminLogin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}

func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req refreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.BadRequest("Invalid request body", err)
	}
	return c.Validate(req)
}
