package admin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RiskiJayaPutra/whfood/internal/auth"
	"github.com/RiskiJayaPutra/whfood/internal/domain"
)

// RequireAdmin guards the moderation pages. Responses are never cached.
func RequireAdmin() fiber.Handler {
	guard := auth.RequireRole(domain.RoleAdmin)
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store")
		return guard(c)
	}
}
