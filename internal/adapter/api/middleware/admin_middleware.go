package middleware

import (
	"github.com/labstack/echo/v4"

	"civicvoice/internal/domain/entity"
	"civicvoice/pkg/errors"
)

type AdminMiddleware struct {
	admins *entity.AdminAllowList
}

func NewAdminMiddleware(admins *entity.AdminAllowList) *AdminMiddleware {
	return &AdminMiddleware{
		admins: admins,
	}
}

// AdminOnly must run after Authenticate. Admin rights come from the
// configured email allow-list.
func (m *AdminMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := c.Get("uid").(string); !ok {
			return errors.Unauthorized("Authentication required", nil)
		}

		email, _ := c.Get("email").(string)
		if !m.admins.Contains(email) {
			return errors.Forbidden("Access Denied. You do not have admin privileges.", nil)
		}

		return next(c)
	}
}
