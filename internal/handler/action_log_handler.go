package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skuldata/skuldata-api/internal/dto"
	"github.com/skuldata/skuldata-api/internal/service"
	"github.com/skuldata/skuldata-api/internal/utils"
)

// ActionLogHandler exposes the audit trail query endpoints.
type ActionLogHandler struct {
	service service.AuditQueryService
	logger  zerolog.Logger
}

// NewActionLogHandler constructs the handler.
func NewActionLogHandler(service service.AuditQueryService, logger zerolog.Logger) *ActionLogHandler {
	return &ActionLogHandler{
		service: service,
		logger:  logger.With().Str("component", "action_log_handler").Logger(),
	}
}

// Register attaches audit trail routes to the router group.
func (h *ActionLogHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/categories", h.categories)
	router.Get("/target-types", h.targetTypes)
}

func (h *ActionLogHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := pagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	req := dto.ActionLogListRequest{
		Page:       page,
		PageSize:   pageSize,
		Category:   c.Query("category"),
		TargetType: c.Query("target_type"),
		ActorTag:   c.Query("actor"),
	}

	if from := c.Query("from"); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid from timestamp")
		}
		req.From = &parsed
	}
	if to := c.Query("to"); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid to timestamp")
		}
		req.To = &parsed
	}

	response, err := h.service.List(c.UserContext(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list audit entries")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list audit entries")
	}

	return utils.SendSuccess(c, "audit entries", response)
}

func (h *ActionLogHandler) categories(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "audit categories", h.service.CategoryOptions())
}

func (h *ActionLogHandler) targetTypes(c *fiber.Ctx) error {
	types, err := h.service.TargetTypeOptions(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list target types")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list target types")
	}

	return utils.SendSuccess(c, "audit target types", types)
}
