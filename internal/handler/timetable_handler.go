package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skuldata/skuldata-api/internal/dto"
	"github.com/skuldata/skuldata-api/internal/service"
	"github.com/skuldata/skuldata-api/internal/utils"
)

// TimetableHandler exposes lesson slot endpoints.
type TimetableHandler struct {
	service service.TimetableService
	logger  zerolog.Logger
}

// NewTimetableHandler constructs the timetable handler.
func NewTimetableHandler(service service.TimetableService, logger zerolog.Logger) *TimetableHandler {
	return &TimetableHandler{
		service: service,
		logger:  logger.With().Str("component", "timetable_handler").Logger(),
	}
}

// Register attaches timetable routes to the router group.
func (h *TimetableHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *TimetableHandler) list(c *fiber.Ctx) error {
	lessons, err := h.service.ListByClass(c.UserContext(), c.Query("class"))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list lessons")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list lessons")
	}

	return utils.SendSuccess(c, "lessons", lessons)
}

func (h *TimetableHandler) create(c *fiber.Ctx) error {
	var payload dto.CreateTimetableLessonRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	lesson, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create lesson")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create lesson")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "lesson created", lesson)
}

func (h *TimetableHandler) get(c *fiber.Ctx) error {
	id, err := parsePathID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid lesson id")
	}

	lesson, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "lesson not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch lesson")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch lesson")
	}

	return utils.SendSuccess(c, "lesson", lesson)
}

func (h *TimetableHandler) update(c *fiber.Ctx) error {
	id, err := parsePathID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid lesson id")
	}

	var payload dto.UpdateTimetableLessonRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	lesson, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "lesson not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to update lesson")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update lesson")
	}

	return utils.SendSuccess(c, "lesson updated", lesson)
}

func (h *TimetableHandler) delete(c *fiber.Ctx) error {
	id, err := parsePathID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid lesson id")
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "lesson not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete lesson")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete lesson")
	}

	return utils.SendSuccess(c, "lesson deleted", nil)
}
