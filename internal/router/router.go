package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/skuldata/skuldata-api/internal/config"
	"github.com/skuldata/skuldata-api/internal/handler"
	"github.com/skuldata/skuldata-api/internal/middleware"
	"github.com/skuldata/skuldata-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	StudentHandler   *handler.StudentHandler
	DocumentHandler  *handler.DocumentHandler
	TimetableHandler *handler.TimetableHandler
	ActionLogHandler *handler.ActionLogHandler
	FeedHandler      *handler.FeedHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	if deps.AuthHandler != nil {
		auth := app.Group("/api/auth")
		deps.AuthHandler.Register(auth, cfg.JWTSecret)
	}

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.StudentHandler != nil {
		students := app.Group("/api/students", jwtMiddleware)
		deps.StudentHandler.Register(students)
	}

	if deps.DocumentHandler != nil {
		documents := app.Group("/api/documents", jwtMiddleware)
		deps.DocumentHandler.Register(documents)
	}

	if deps.TimetableHandler != nil {
		timetables := app.Group("/api/timetables", jwtMiddleware)
		deps.TimetableHandler.Register(timetables)
	}

	// The audit trail and its live feed are admin surfaces.
	adminGate := middleware.WithAuth(func(c *fiber.Ctx) error { return c.Next() }, middleware.AuthOptions{
		Role: middleware.AuthRoleAdmin,
	})

	if deps.ActionLogHandler != nil {
		activity := app.Group("/api/admin/activity", jwtMiddleware, adminGate)
		deps.ActionLogHandler.Register(activity)
	}

	if deps.FeedHandler != nil {
		feed := app.Group("/api/admin/feed", jwtMiddleware, adminGate)
		deps.FeedHandler.Register(feed)
	}
}
