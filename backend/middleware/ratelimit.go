package middleware

import (
	"github.com/gofiber/fiber/v2"

	"project/backend/utils"
)

// APIRateLimit applies the general "api" bucket per client IP. The limiter
// fails open, so an unreachable Redis never blocks traffic.
func APIRateLimit(limiter utils.RateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !limiter.Allow(c.Context(), c.IP(), utils.BucketAPI) {
			return utils.QuotaExceeded(c, "Too many requests, slow down")
		}
		return c.Next()
	}
}
