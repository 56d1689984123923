package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skuldata/skuldata-api/internal/dto"
	"github.com/skuldata/skuldata-api/internal/repository"
	"github.com/skuldata/skuldata-api/internal/service"
	"github.com/skuldata/skuldata-api/internal/utils"
)

// DocumentHandler exposes document endpoints including the multipart upload.
type DocumentHandler struct {
	service service.DocumentService
	logger  zerolog.Logger
}

// NewDocumentHandler constructs the document handler.
func NewDocumentHandler(service service.DocumentService, logger zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		logger:  logger.With().Str("component", "document_handler").Logger(),
	}
}

// Register attaches document routes to the router group.
func (h *DocumentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.upload)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Get("/:id/download", h.download)
	router.Post("/:id/share", h.share)
}

func (h *DocumentHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := pagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	filter := repository.DocumentFilter{
		Page:     page,
		PageSize: pageSize,
		Category: c.Query("category"),
	}
	if public := strings.TrimSpace(c.Query("public")); public != "" {
		value := public == "true" || public == "1"
		filter.Public = &value
	}

	documents, total, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list documents")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list documents")
	}

	return utils.SendSuccess(c, "documents", fiber.Map{
		"items": documents,
		"total": total,
	})
}

func (h *DocumentHandler) upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		title = header.Filename
	}
	isPublic := c.FormValue("is_public") == "true"

	document, err := h.service.Upload(
		c.UserContext(),
		actorFromContext(c),
		header,
		title,
		c.FormValue("description"),
		c.FormValue("category"),
		isPublic,
	)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to upload document")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to upload document")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "document uploaded", document)
}

func (h *DocumentHandler) get(c *fiber.Ctx) error {
	id, err := parsePathID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid document id")
	}

	document, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "document not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch document")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch document")
	}

	return utils.SendSuccess(c, "document", document)
}

func (h *DocumentHandler) update(c *fiber.Ctx) error {
	id, err := parsePathID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid document id")
	}

	var payload dto.UpdateDocumentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	document, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "document not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to update document")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update document")
	}

	return utils.SendSuccess(c, "document updated", document)
}

func (h *DocumentHandler) delete(c *fiber.Ctx) error {
	id, err := parsePathID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid document id")
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "document not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete document")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete document")
	}

	return utils.SendSuccess(c, "document deleted", nil)
}

func (h *DocumentHandler) download(c *fiber.Ctx) error {
	id, err := parsePathID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid document id")
	}

	document, err := h.service.Download(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "document not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to prepare download")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to prepare download")
	}

	if document.FileURL == "" {
		return utils.SendError(c, fiber.StatusNotFound, "document has no stored file")
	}

	return c.Redirect(document.FileURL, fiber.StatusTemporaryRedirect)
}

func (h *DocumentHandler) share(c *fiber.Ctx) error {
	id, err := parsePathID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid document id")
	}

	var payload dto.ShareDocumentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.service.Share(c.UserContext(), actorFromContext(c), id, payload); err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "document not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to share document")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to share document")
	}

	return utils.SendSuccess(c, "document shared", nil)
}
