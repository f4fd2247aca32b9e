package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/wakaf-cms-api/internal/utils"
	"github.com/noah-isme/wakaf-cms-api/pkg/identity"
)

// TokenParser verifies bearer tokens. *identity.Issuer satisfies it.
type TokenParser interface {
	Parse(token string) (identity.Session, error)
}

// Authenticate validates the bearer token, rejects revoked sessions and binds the session to the
// request's user context so services can resolve the acting admin.
func Authenticate(parser TokenParser, revoker identity.SessionRevoker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		session, err := parser.Parse(strings.TrimSpace(authorization[len(bearer):]))
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		if revoker != nil {
			revoked, err := revoker.IsRevoked(c.UserContext(), session.ID)
			if err != nil {
				return utils.SendError(c, fiber.StatusServiceUnavailable, "session store unavailable")
			}
			if revoked {
				return utils.SendError(c, fiber.StatusUnauthorized, "session has ended")
			}
		}

		c.Locals("user_id", session.User.ID)
		c.Locals("session_id", session.ID)
		c.SetUserContext(identity.WithSession(c.UserContext(), session))

		return c.Next()
	}
}
