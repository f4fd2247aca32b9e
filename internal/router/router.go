package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/wakaf-cms-api/internal/config"
	"github.com/noah-isme/wakaf-cms-api/internal/handler"
	"github.com/noah-isme/wakaf-cms-api/internal/observability"
)

// Dependencies groups router dependencies for registration. Nil handlers are skipped.
type Dependencies struct {
	AuthHandler              *handler.AuthHandler
	PublicContentHandler     *handler.PublicContentHandler
	DocumentationPageHandler *handler.DocumentationPageHandler
	AdminContentHandler      *handler.AdminContentHandler
	AdminMediaHandler        *handler.AdminMediaHandler
	AdminActivityHandler     *handler.AdminActivityHandler
	HealthProbes             map[string]handler.HealthProbe
	// AdminMiddleware authenticates the admin and checks the admin role.
	AdminMiddleware []fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"))
	}
	if deps.PublicContentHandler != nil {
		deps.PublicContentHandler.Register(api.Group("/public"))
	}
	if deps.DocumentationPageHandler != nil {
		deps.DocumentationPageHandler.Register(app)
	}

	adminMiddleware := deps.AdminMiddleware
	if len(adminMiddleware) == 0 {
		adminMiddleware = []fiber.Handler{func(c *fiber.Ctx) error { return c.Next() }}
	}
	admin := app.Group("/api/admin", adminMiddleware...)

	// Fixed admin resources are registered before the per-table content routes.
	if deps.AdminActivityHandler != nil {
		deps.AdminActivityHandler.Register(admin.Group("/activity-logs"))
	}
	if deps.AdminMediaHandler != nil {
		deps.AdminMediaHandler.Register(admin.Group("/media"))
	}
	if deps.AdminContentHandler != nil {
		deps.AdminContentHandler.Register(admin)
	}
}
