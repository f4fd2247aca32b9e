package handler

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/wakaf-cms-api/internal/dto"
	"github.com/noah-isme/wakaf-cms-api/internal/middleware"
	"github.com/noah-isme/wakaf-cms-api/internal/service"
	"github.com/noah-isme/wakaf-cms-api/internal/utils"
)

// AuthHandler exposes the admin session endpoints.
type AuthHandler struct {
	service   service.AuthService
	validate  *validator.Validate
	logger    zerolog.Logger
	protected fiber.Handler
}

// NewAuthHandler constructs the handler. protected guards logout and session lookup.
func NewAuthHandler(service service.AuthService, validate *validator.Validate, protected fiber.Handler, logger zerolog.Logger) *AuthHandler {
	if protected == nil {
		protected = func(c *fiber.Ctx) error { return c.Next() }
	}
	return &AuthHandler{
		service:   service,
		validate:  validate,
		protected: protected,
		logger:    logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches auth routes to the router group.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/login", middleware.RateLimit("login", 5, time.Minute), h.login)
	router.Post("/logout", h.protected, h.logout)
	router.Get("/session", h.protected, h.session)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "validation failed", validationDetails(err))
	}

	response, err := h.service.Login(c.UserContext(), payload)
	switch {
	case err == nil:
		return utils.OK(c, response, "login successful", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotAdmin):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("login failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "login failed")
	}
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	if err := h.service.Logout(c.UserContext()); err != nil {
		if errors.Is(err, service.ErrNoSession) {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("logout failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "logout failed")
	}
	return utils.OK(c, nil, "logged out", nil)
}

func (h *AuthHandler) session(c *fiber.Ctx) error {
	session, err := h.service.Session(c.UserContext())
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}
	return utils.OK(c, session, "active session", nil)
}
