package router_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wakaf-cms-api/internal/config"
	"github.com/noah-isme/wakaf-cms-api/internal/handler"
	"github.com/noah-isme/wakaf-cms-api/internal/middleware"
	"github.com/noah-isme/wakaf-cms-api/internal/router"
	"github.com/noah-isme/wakaf-cms-api/pkg/identity"
)

func newApp(t *testing.T) (*fiber.App, *identity.Issuer) {
	t.Helper()
	issuer := identity.NewIssuer("router-secret", time.Hour)
	app := fiber.New()
	router.Register(app, config.Config{AppName: "Wakaf CMS API", AppEnv: "test"}, router.Dependencies{
		HealthProbes: map[string]handler.HealthProbe{
			"database": func(*fiber.Ctx) error { return nil },
		},
		AdminMiddleware: []fiber.Handler{middleware.Authenticate(issuer, nil)},
	})
	return app, issuer
}

func TestHealthRouteCarriesApplicationHeader(t *testing.T) {
	app, _ := newApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "Wakaf CMS API", resp.Header.Get("X-Application"))
}

func TestMetricsRouteIsMounted(t *testing.T) {
	app, _ := newApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAdminGroupRequiresToken(t *testing.T) {
	app, issuer := newApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/admin/facilities", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	_, token, err := issuer.Issue(identity.User{ID: "admin-1", Email: "admin@wakaf.org"})
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/api/admin/facilities", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	// No content handler was registered, so an authenticated request falls through.
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestNilHandlersAreSkipped(t *testing.T) {
	app, _ := newApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/public/facilities", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
