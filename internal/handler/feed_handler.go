package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/skuldata/skuldata-api/internal/middleware"
	"github.com/skuldata/skuldata-api/internal/service"
	"github.com/skuldata/skuldata-api/internal/utils"
)

// FeedHandler wires the live activity feed including the websocket upgrade.
type FeedHandler struct {
	service service.FeedService
	logger  zerolog.Logger
}

// NewFeedHandler creates a feed handler instance.
func NewFeedHandler(service service.FeedService, logger zerolog.Logger) *FeedHandler {
	return &FeedHandler{
		service: service,
		logger:  logger.With().Str("component", "feed_handler").Logger(),
	}
}

// Register binds feed routes under the provided router group.
func (h *FeedHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			ctx := c.UserContext()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
			c.Locals("request_ctx", ctx)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
	router.Get("/recent", h.recent)
}

func (h *FeedHandler) handleConnection(conn *websocket.Conn) {
	userID := websocketUserID(conn)
	if userID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusUnauthorized, "user id missing"))
		_ = conn.Close()
		return
	}

	role := fmt.Sprint(conn.Locals("user_role"))
	correlation := fmt.Sprint(conn.Locals("correlation_id"))
	baseCtx, _ := conn.Locals("request_ctx").(context.Context)

	opts := service.FeedConnectionOptions{
		UserID:        userID,
		Role:          role,
		CorrelationID: correlation,
		Context:       baseCtx,
	}

	h.logger.Info().Str("user_id", userID).Msg("feed websocket connected")
	h.service.ServeConnection(conn, opts)
	h.logger.Info().Str("user_id", userID).Msg("feed websocket disconnected")
}

func (h *FeedHandler) recent(c *fiber.Ctx) error {
	entries, err := h.service.Recent(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load recent feed entries")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load recent feed entries")
	}

	return utils.SendSuccess(c, "recent activity", entries)
}

func websocketUserID(conn *websocket.Conn) string {
	if value := conn.Locals("user_id"); value != nil {
		switch v := value.(type) {
		case float64:
			return strconv.FormatUint(uint64(v), 10)
		case uint:
			return strconv.FormatUint(uint64(v), 10)
		case int:
			return strconv.Itoa(v)
		case string:
			return strings.TrimSpace(v)
		}
	}
	return ""
}
