package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/wakaf-cms-api/internal/dto"
	"github.com/noah-isme/wakaf-cms-api/internal/models"
	"github.com/noah-isme/wakaf-cms-api/internal/service"
	"github.com/noah-isme/wakaf-cms-api/internal/utils"
)

// AdminActivityHandler exposes the activity log viewer and statistics endpoints.
type AdminActivityHandler struct {
	service  service.ActivityService
	stats    service.ActivityStatsService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewAdminActivityHandler constructs the handler.
func NewAdminActivityHandler(service service.ActivityService, stats service.ActivityStatsService, validate *validator.Validate, logger zerolog.Logger) *AdminActivityHandler {
	return &AdminActivityHandler{
		service:  service,
		stats:    stats,
		validate: validate,
		logger:   logger.With().Str("component", "admin_activity_handler").Logger(),
	}
}

// Register attaches activity log routes to the router group.
func (h *AdminActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/stats", h.summary)
}

func (h *AdminActivityHandler) list(c *fiber.Ctx) error {
	var req dto.ActivityListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query")
	}
	if err := h.validate.Struct(req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid query", validationDetails(err))
	}

	entries, err := h.service.List(c.UserContext(), req.Limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activity logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity logs")
	}

	filtered := service.FilterEntries(entries, req.Action, req.Table)
	items := make([]dto.ActivityLogResponse, 0, len(filtered))
	for _, entry := range filtered {
		items = append(items, dto.NewActivityLogResponse(entry))
	}

	return utils.OK(c, dto.ActivityListResponse{
		Items:   items,
		Limit:   req.Limit,
		Fetched: len(entries),
	}, "activity logs", nil)
}

// create accepts a manual entry. The actor is resolved from the session, never from the body.
func (h *AdminActivityHandler) create(c *fiber.Ctx) error {
	var payload dto.ActivityCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "validation failed", validationDetails(err))
	}

	action, _ := models.ParseActivityAction(payload.Action)
	oldPayload, err := models.DocumentOf(payload.OldPayload)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid old_payload")
	}
	newPayload, err := models.DocumentOf(payload.NewPayload)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid new_payload")
	}

	entry := service.ActivityEntry{
		Action:         action,
		TargetTable:    payload.TargetTable,
		TargetRecordID: payload.TargetRecordID,
		OldPayload:     oldPayload,
		NewPayload:     newPayload,
		Description:    payload.Description,
	}
	if err := entry.Validate(); err != nil {
		if errors.Is(err, service.ErrActivityPayloadMissing) || errors.Is(err, service.ErrActivityInvalid) {
			return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
		}
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	h.service.Record(c.UserContext(), entry)
	return utils.Respond(c, fiber.StatusAccepted, nil, "activity log accepted", nil)
}

func (h *AdminActivityHandler) summary(c *fiber.Ctx) error {
	if h.stats == nil {
		return utils.SendError(c, fiber.StatusNotFound, "statistics unavailable")
	}
	days, err := parseQueryInt(c, "days")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid days")
	}

	response, err := h.stats.Summary(c.UserContext(), days)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build activity statistics")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build activity statistics")
	}
	return utils.OK(c, response, "activity statistics", nil)
}
