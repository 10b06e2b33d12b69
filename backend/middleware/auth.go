package middleware

import (
	"github.com/gofiber/fiber/v2"

	"project/backend/config"
	"project/backend/models"
	"project/backend/utils"
)

// Locals keys populated by AuthMiddleware.
const (
	LocalUserID = "userID"
	LocalRole   = "role"
)

func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := utils.ExtractIdentityFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalRole, role)
		return c.Next()
	}
}

// RequireRoles guards a route group to the listed roles. Must run after
// AuthMiddleware.
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(models.Role)
		if !ok {
			return utils.Unauthorized(c, "Unauthorized")
		}
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return utils.Forbidden(c, "Insufficient role")
	}
}

// UserID returns the authenticated user's id from the request context.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(LocalUserID).(uint)
	return id
}
