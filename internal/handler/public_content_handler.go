package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/wakaf-cms-api/internal/service"
	"github.com/noah-isme/wakaf-cms-api/internal/utils"
)

// PublicContentHandler serves the read-only content of the public site.
type PublicContentHandler struct {
	service service.PublicContentService
	logger  zerolog.Logger
}

// NewPublicContentHandler constructs the handler.
func NewPublicContentHandler(service service.PublicContentService, logger zerolog.Logger) *PublicContentHandler {
	return &PublicContentHandler{
		service: service,
		logger:  logger.With().Str("component", "public_content_handler").Logger(),
	}
}

// Register attaches public routes to the router group.
func (h *PublicContentHandler) Register(router fiber.Router) {
	router.Get("/profile", h.profile)
	router.Get("/facilities", h.facilities)
	router.Get("/programs", h.programs)
	router.Get("/articles", h.articles)
	router.Get("/articles/:slug", h.article)
	router.Get("/announcements", h.announcements)
	router.Get("/documentation", h.documentation)
}

func (h *PublicContentHandler) respond(c *fiber.Ctx, data interface{}, err error, message string) error {
	if err != nil {
		if errors.Is(err, service.ErrContentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load " + message)
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load "+message)
	}
	c.Set(fiber.HeaderCacheControl, "public, max-age=60")
	return utils.OK(c, data, message, nil)
}

func (h *PublicContentHandler) profile(c *fiber.Ctx) error {
	list, err := h.service.Profile(c.UserContext())
	return h.respond(c, list, err, "profile")
}

func (h *PublicContentHandler) facilities(c *fiber.Ctx) error {
	list, err := h.service.Facilities(c.UserContext())
	return h.respond(c, list, err, "facilities")
}

func (h *PublicContentHandler) programs(c *fiber.Ctx) error {
	list, err := h.service.Programs(c.UserContext())
	return h.respond(c, list, err, "programs")
}

func (h *PublicContentHandler) articles(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	list, err := h.service.Articles(c.UserContext(), page, pageSize)
	return h.respond(c, list, err, "articles")
}

func (h *PublicContentHandler) article(c *fiber.Ctx) error {
	article, err := h.service.ArticleBySlug(c.UserContext(), c.Params("slug"))
	return h.respond(c, article, err, "article")
}

func (h *PublicContentHandler) announcements(c *fiber.Ctx) error {
	list, err := h.service.Announcements(c.UserContext())
	return h.respond(c, list, err, "announcements")
}

func (h *PublicContentHandler) documentation(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	list, err := h.service.Documentation(c.UserContext(), page, pageSize)
	return h.respond(c, list, err, "documentation")
}
