package middleware_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wakaf-cms-api/internal/middleware"
	"github.com/noah-isme/wakaf-cms-api/pkg/identity"
)

func authApp(issuer *identity.Issuer, revoker identity.SessionRevoker) *fiber.App {
	app := fiber.New()
	app.Use(middleware.CorrelationID())
	app.Get("/me", middleware.Authenticate(issuer, revoker), func(c *fiber.Ctx) error {
		user, ok := identity.NewContextProvider(nil).CurrentUser(c.UserContext())
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		if middleware.CorrelationIDFromContext(c.UserContext()) == "" {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendString(user.Email)
	})
	return app
}

func get(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestAuthenticateBindsSession(t *testing.T) {
	issuer := identity.NewIssuer("secret", time.Hour)
	_, token, err := issuer.Issue(identity.User{ID: "u-1", Email: "admin@wakaf.org"})
	require.NoError(t, err)

	resp := get(t, authApp(issuer, nil), "Bearer "+token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "admin@wakaf.org", string(body))
	require.NotEmpty(t, resp.Header.Get("X-Correlation-ID"))
}

func TestAuthenticateRejectsMissingAndForeignTokens(t *testing.T) {
	issuer := identity.NewIssuer("secret", time.Hour)
	app := authApp(issuer, nil)

	require.Equal(t, fiber.StatusUnauthorized, get(t, app, "").StatusCode)
	require.Equal(t, fiber.StatusUnauthorized, get(t, app, "Basic abc").StatusCode)

	_, foreign, err := identity.NewIssuer("other", time.Hour).Issue(identity.User{ID: "u-1"})
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, get(t, app, "Bearer "+foreign).StatusCode)
}

func TestAuthenticateRejectsRevokedSession(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	revoker := identity.NewRedisRevoker(client)

	issuer := identity.NewIssuer("secret", time.Hour)
	session, token, err := issuer.Issue(identity.User{ID: "u-1", Email: "admin@wakaf.org"})
	require.NoError(t, err)
	app := authApp(issuer, revoker)

	require.Equal(t, fiber.StatusOK, get(t, app, "Bearer "+token).StatusCode)
	require.NoError(t, revoker.Revoke(context.Background(), session))
	require.Equal(t, fiber.StatusUnauthorized, get(t, app, "bearer "+token).StatusCode)
}
