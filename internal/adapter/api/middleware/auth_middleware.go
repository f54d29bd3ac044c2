package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"civicvoice/internal/domain/entity"
	"civicvoice/pkg/errors"
)

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*entity.AuthIdentity, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// Authenticate verifies a Firebase ID token from the Authorization header,
// or from the "token" query parameter for WebSocket upgrades where browsers
// cannot set headers.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		idToken, err := bearerToken(c)
		if err != nil {
			return err
		}

		identity, err := m.verifier.VerifyToken(c.Request().Context(), idToken)
		if err != nil {
			return errors.Unauthorized("Invalid or expired token", err)
		}

		c.Set("uid", identity.UID)
		c.Set("email", identity.Email)
		c.Set("email_verified", identity.EmailVerified)

		return next(c)
	}
}

// RequireVerifiedEmail must run after Authenticate.
func (m *AuthMiddleware) RequireVerifiedEmail(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if verified, _ := c.Get("email_verified").(bool); !verified {
			return errors.Forbidden("Please verify your email before continuing.", nil)
		}
		return next(c)
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if token := c.QueryParam("token"); token != "" {
			return token, nil
		}
		return "", errors.Unauthorized("Authorization header is required", nil)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.Unauthorized("Invalid authorization format", nil)
	}
	return parts[1], nil
}
