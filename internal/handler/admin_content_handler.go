package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/wakaf-cms-api/internal/dto"
	"github.com/noah-isme/wakaf-cms-api/internal/service"
	"github.com/noah-isme/wakaf-cms-api/internal/utils"
)

// AdminContentHandler exposes CRUD endpoints for every managed content table.
type AdminContentHandler struct {
	service service.AdminContentService
	logger  zerolog.Logger
}

// NewAdminContentHandler constructs the handler.
func NewAdminContentHandler(service service.AdminContentService, logger zerolog.Logger) *AdminContentHandler {
	return &AdminContentHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_content_handler").Logger(),
	}
}

// Register attaches one route set per table so the group can also host other admin resources.
func (h *AdminContentHandler) Register(router fiber.Router) {
	router.Get("/tables", h.tables)
	for _, table := range h.service.Tables() {
		group := router.Group("/" + table.Route)
		route := table.Route
		group.Get("", func(c *fiber.Ctx) error { return h.list(c, route) })
		group.Post("", func(c *fiber.Ctx) error { return h.create(c, route) })
		group.Get("/:id", func(c *fiber.Ctx) error { return h.get(c, route) })
		group.Patch("/:id", func(c *fiber.Ctx) error { return h.update(c, route) })
		group.Put("/:id", func(c *fiber.Ctx) error { return h.update(c, route) })
		group.Delete("/:id", func(c *fiber.Ctx) error { return h.delete(c, route) })
	}
}

func (h *AdminContentHandler) tables(c *fiber.Ctx) error {
	return utils.OK(c, h.service.Tables(), "content tables", nil)
}

func (h *AdminContentHandler) list(c *fiber.Ctx, route string) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	if pageSize > 100 {
		pageSize = 100
	}

	response, err := h.service.List(c.UserContext(), route, dto.ContentListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
	})
	if err != nil {
		return contentError(c, h.logger, err, "failed to list content")
	}
	return utils.OK(c, response.Items, response.Table, response.Pagination)
}

func (h *AdminContentHandler) get(c *fiber.Ctx, route string) error {
	item, err := h.service.Get(c.UserContext(), route, c.Params("id"))
	if err != nil {
		return contentError(c, h.logger, err, "failed to load content")
	}
	return utils.OK(c, item, "content retrieved", nil)
}

func (h *AdminContentHandler) create(c *fiber.Ctx, route string) error {
	item, err := h.service.Create(c.UserContext(), route, c.Body())
	if err != nil {
		return contentError(c, h.logger, err, "failed to create content")
	}
	return utils.Created(c, item, "content created")
}

func (h *AdminContentHandler) update(c *fiber.Ctx, route string) error {
	item, err := h.service.Update(c.UserContext(), route, c.Params("id"), c.Body())
	if err != nil {
		return contentError(c, h.logger, err, "failed to update content")
	}
	return utils.OK(c, item, "content updated", nil)
}

func (h *AdminContentHandler) delete(c *fiber.Ctx, route string) error {
	if err := h.service.Delete(c.UserContext(), route, c.Params("id")); err != nil {
		return contentError(c, h.logger, err, "failed to delete content")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
