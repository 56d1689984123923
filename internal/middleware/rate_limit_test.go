package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newRateLimitApp(max int) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if raw := c.Get("X-Test-User"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 32)
			if err == nil {
				c.Locals("user_id", uint(id))
			}
		}
		return c.Next()
	})
	app.Get("/ping", RateLimit("ping", max, time.Minute), func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})
	return app
}

func rateLimitRequest(t *testing.T, app *fiber.App, user string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRateLimitRejectsWithErrorEnvelope(t *testing.T) {
	app := newRateLimitApp(2)

	require.Equal(t, fiber.StatusOK, rateLimitRequest(t, app, "").StatusCode)
	require.Equal(t, fiber.StatusOK, rateLimitRequest(t, app, "").StatusCode)

	resp := rateLimitRequest(t, app, "")
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	var payload struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.False(t, payload.Success)
	require.Equal(t, "too many requests", payload.Message)
}

func TestRateLimitBucketsByAuthenticatedUser(t *testing.T) {
	app := newRateLimitApp(1)

	require.Equal(t, fiber.StatusOK, rateLimitRequest(t, app, "1").StatusCode)
	require.Equal(t, fiber.StatusTooManyRequests, rateLimitRequest(t, app, "1").StatusCode)

	// Same client address, different identity, fresh bucket.
	require.Equal(t, fiber.StatusOK, rateLimitRequest(t, app, "2").StatusCode)
}
