package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/skuldata/skuldata-api/internal/audit"
	"github.com/skuldata/skuldata-api/internal/models"
)

const jwtTestSecret = "jwt-test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newJWTApp(onRequest func(c *fiber.Ctx) error) *fiber.App {
	app := fiber.New()
	app.Get("/protected", JWTProtected(jwtTestSecret), onRequest)
	return app
}

func TestJWTProtectedBindsActor(t *testing.T) {
	tag := uuid.New()
	token := signToken(t, jwtTestSecret, jwt.MapClaims{
		"sub":  float64(7),
		"tag":  tag.String(),
		"role": "Admin",
		"name": "Grace Hopper",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	var seen *models.User
	var ambient audit.Actor
	app := newJWTApp(func(c *fiber.Ctx) error {
		seen, _ = c.Locals("user").(*models.User)
		ambient = audit.ActorFromContext(c.UserContext())
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NotNil(t, seen)
	require.Equal(t, uint(7), seen.ID)
	require.Equal(t, tag, seen.Tag)
	require.Equal(t, "admin", seen.Role)
	require.NotNil(t, ambient)
	require.Equal(t, tag, ambient.StableTag())
}

func TestJWTProtectedAcceptsStringSubject(t *testing.T) {
	token := signToken(t, jwtTestSecret, jwt.MapClaims{
		"sub": "12",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	var seen *models.User
	app := newJWTApp(func(c *fiber.Ctx) error {
		seen, _ = c.Locals("user").(*models.User)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, seen)
	require.Equal(t, uint(12), seen.ID)
}

func TestJWTProtectedMissingHeader(t *testing.T) {
	app := newJWTApp(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/protected", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsForeignSignature(t *testing.T) {
	token := signToken(t, "some-other-secret", jwt.MapClaims{
		"sub": float64(7),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	app := newJWTApp(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsExpiredToken(t *testing.T) {
	token := signToken(t, jwtTestSecret, jwt.MapClaims{
		"sub": float64(7),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	app := newJWTApp(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsMissingSubject(t *testing.T) {
	token := signToken(t, jwtTestSecret, jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	app := newJWTApp(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
