package middleware

import (
	"strings"

	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

// BearerAuth extracts the bearer token, validates it, and stashes the
// principal in the request locals for handlers to pick up.
func BearerAuth(auth ports.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		principal, err := auth.ParseToken(header[len(prefix):])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// RequireKind rejects principals of the wrong flavor, e.g. a user token on
// an agent-only route.
func RequireKind(kind ports.PrincipalKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := c.Locals(principalKey).(ports.Principal)
		if !ok || principal.Kind != kind {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "forbidden",
			})
		}
		return c.Next()
	}
}

// PrincipalFrom returns the authenticated principal stored by BearerAuth.
func PrincipalFrom(c *fiber.Ctx) (ports.Principal, bool) {
	principal, ok := c.Locals(principalKey).(ports.Principal)
	return principal, ok
}
