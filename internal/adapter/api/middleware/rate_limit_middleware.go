package middleware

import (
	"fmt"
	"math"

	"github.com/labstack/echo/v4"

	"civicvoice/internal/infrastructure/ratelimit"
	"civicvoice/pkg/errors"
	"civicvoice/pkg/logger"
)

// RateLimit throttles an action per authenticated user, falling back to the
// client IP for anonymous requests.
func RateLimit(limiter *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, _ := c.Get("uid").(string)
			if key == "" {
				key = "ip:" + c.RealIP()
			}

			allowed, wait := limiter.Allow(key, action)
			if !allowed {
				seconds := int(math.Ceil(wait.Seconds()))
				logger.Warn("RATE LIMIT: %s blocked on %s (retry in %ds)", key, action, seconds)
				c.Response().Header().Set("Retry-After", fmt.Sprint(seconds))
				return errors.TooManyRequests(fmt.Sprintf("Too many requests, try again in %d seconds", seconds))
			}

			return next(c)
		}
	}
}
