package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/newsroom-tools/newsletter-backend/internal/services"
)

// SuperAdminRequired gates administration routes. A super-admin is either
// stored with that role or listed in SUPER_ADMIN_EMAILS.
func SuperAdminRequired(perms *services.Permissions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := Actor(c)
		if actor == nil {
			return services.ErrInvalidToken
		}
		if err := perms.RequireSuperAdmin(actor); err != nil {
			return err
		}
		return c.Next()
	}
}

// AdminRequired accepts a global ADMIN as well as a super-admin.
func AdminRequired(perms *services.Permissions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := Actor(c)
		if actor == nil {
			return services.ErrInvalidToken
		}
		if err := perms.RequireAdmin(actor); err != nil {
			return err
		}
		return c.Next()
	}
}
