package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skuldata/skuldata-api/internal/dto"
	"github.com/skuldata/skuldata-api/internal/middleware"
	"github.com/skuldata/skuldata-api/internal/service"
	"github.com/skuldata/skuldata-api/internal/utils"
)

// AuthHandler exposes login and logout endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches auth routes to the router group. Logout requires a
// valid token; login is rate limited per client address.
func (h *AuthHandler) Register(router fiber.Router, jwtSecret string) {
	router.Post("/login", middleware.RateLimit("auth_login", 10, time.Minute), h.login)
	router.Post("/logout", middleware.JWTProtected(jwtSecret), h.logout)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Login(c.UserContext(), payload, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		if errors.Is(err, service.ErrInvalidCredentials) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("login failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "login failed")
	}

	return utils.SendSuccess(c, "login successful", response)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	if actor == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	h.service.Logout(c.UserContext(), actor, c.IP(), c.Get(fiber.HeaderUserAgent))

	return utils.SendSuccess(c, "logout successful", nil)
}
