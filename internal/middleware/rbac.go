package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/wakaf-cms-api/internal/utils"
	"github.com/noah-isme/wakaf-cms-api/pkg/identity"
)

// RequireRole ensures that the authenticated user holds one of the allowed roles. It must run
// after Authenticate.
func RequireRole(provider identity.Provider, roles ...string) fiber.Handler {
	allowed := make([]string, 0, len(roles))
	for _, role := range roles {
		if normalized := strings.ToLower(strings.TrimSpace(role)); normalized != "" {
			allowed = append(allowed, normalized)
		}
	}

	return func(c *fiber.Ctx) error {
		user, ok := provider.CurrentUser(c.UserContext())
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		for _, role := range allowed {
			granted, err := provider.HasRole(c.UserContext(), user.ID, role)
			if err != nil {
				return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve permissions")
			}
			if granted {
				c.Locals("user_role", role)
				return c.Next()
			}
		}
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	}
}
