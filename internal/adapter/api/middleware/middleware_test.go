package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicvoice/internal/domain/entity"
	"civicvoice/internal/infrastructure/ratelimit"
	"civicvoice/pkg/errors"
)

type stubVerifier map[string]*entity.AuthIdentity

func (s stubVerifier) VerifyToken(_ context.Context, token string) (*entity.AuthIdentity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return nil, fmt.Errorf("bad token")
}

var verifier = stubVerifier{
	"citizen":    {UID: "u1", Email: "citizen@example.com", EmailVerified: true},
	"unverified": {UID: "u2", Email: "new@example.com"},
	"admin":      {UID: "a1", Email: "admin@municipality.com", EmailVerified: true},
}

func run(t *testing.T, target, header string, chain ...echo.MiddlewareFunc) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	h := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return c, h(c)
}

func TestAuthenticate(t *testing.T) {
	m := NewAuthMiddleware(verifier)

	c, err := run(t, "/", "Bearer citizen", m.Authenticate)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.Get("uid"))
	assert.Equal(t, "citizen@example.com", c.Get("email"))

	c, err = run(t, "/ws?token=citizen", "", m.Authenticate)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.Get("uid"))

	_, err = run(t, "/", "", m.Authenticate)
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))

	_, err = run(t, "/", "Token citizen", m.Authenticate)
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))

	_, err = run(t, "/", "Bearer forged", m.Authenticate)
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))
}

func TestRequireVerifiedEmail(t *testing.T) {
	m := NewAuthMiddleware(verifier)

	_, err := run(t, "/", "Bearer unverified", m.Authenticate, m.RequireVerifiedEmail)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = run(t, "/", "Bearer citizen", m.Authenticate, m.RequireVerifiedEmail)
	assert.NoError(t, err)
}

func TestAdminOnly(t *testing.T) {
	auth := NewAuthMiddleware(verifier)
	admin := NewAdminMiddleware(entity.NewAdminAllowList([]string{"admin@municipality.com"}))

	_, err := run(t, "/", "Bearer citizen", auth.Authenticate, admin.AdminOnly)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = run(t, "/", "Bearer admin", auth.Authenticate, admin.AdminOnly)
	assert.NoError(t, err)

	_, err = run(t, "/", "", admin.AdminOnly)
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))
}

func TestRateLimit(t *testing.T) {
	auth := NewAuthMiddleware(verifier)
	limiter := ratelimit.NewRateLimiter()
	limiter.SetPolicy(ratelimit.ActionSubmitGrievance, ratelimit.Policy{PerHour: 1})
	mw := RateLimit(limiter, ratelimit.ActionSubmitGrievance)

	_, err := run(t, "/", "Bearer citizen", auth.Authenticate, mw)
	require.NoError(t, err)

	c, err := run(t, "/", "Bearer citizen", auth.Authenticate, mw)
	assert.True(t, errors.Is(err, "TOO_MANY_REQUESTS"))
	assert.NotEmpty(t, c.Response().Header().Get("Retry-After"))

	_, err = run(t, "/", "Bearer admin", auth.Authenticate, mw)
	assert.NoError(t, err)
}
