package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/wakaf-cms-api/internal/dto"
	"github.com/noah-isme/wakaf-cms-api/internal/service"
	"github.com/noah-isme/wakaf-cms-api/internal/utils"
)

// AdminMediaHandler exposes the media library backed by the object store.
type AdminMediaHandler struct {
	service service.MediaService
	logger  zerolog.Logger
}

// NewAdminMediaHandler constructs the handler.
func NewAdminMediaHandler(service service.MediaService, logger zerolog.Logger) *AdminMediaHandler {
	return &AdminMediaHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_media_handler").Logger(),
	}
}

// Register attaches media routes to the router group.
func (h *AdminMediaHandler) Register(router fiber.Router) {
	router.Get("/:bucket", h.list)
	router.Post("/:bucket", h.upload)
	router.Delete("/:bucket", h.remove)
}

func (h *AdminMediaHandler) list(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext(), c.Params("bucket"))
	if err != nil {
		return h.fail(c, err, "failed to list media")
	}
	return utils.OK(c, items, "media retrieved", nil)
}

func (h *AdminMediaHandler) upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, service.ErrMediaFileRequired.Error())
	}

	response, err := h.service.Upload(c.UserContext(), c.Params("bucket"), file)
	if err != nil {
		return h.fail(c, err, "failed to upload media")
	}

	requestLogger(h.logger, c).Info().
		Str("bucket", response.Bucket).
		Str("path", response.Path).
		Str("mime_type", response.MimeType).
		Int64("size_bytes", response.SizeBytes).
		Msg("media uploaded")
	return utils.Created(c, response, "media uploaded")
}

func (h *AdminMediaHandler) remove(c *fiber.Ctx) error {
	var payload dto.MediaRemoveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}
	if raw := strings.TrimSpace(c.Query("paths")); raw != "" {
		payload.Paths = append(payload.Paths, strings.Split(raw, ",")...)
	}

	if err := h.service.Remove(c.UserContext(), c.Params("bucket"), payload.Paths); err != nil {
		return h.fail(c, err, "failed to remove media")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminMediaHandler) fail(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrMediaTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrMediaTypeNotAllowed):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, service.ErrMediaFileRequired), errors.Is(err, service.ErrMediaBucketInvalid), errors.Is(err, service.ErrContentInvalid):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(message)
		return utils.SendError(c, fiber.StatusBadGateway, message)
	}
}
