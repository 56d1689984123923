package middleware

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skuldata/skuldata-api/internal/audit"
	"github.com/skuldata/skuldata-api/internal/models"
)

// methodCategories maps HTTP methods onto audit categories.
var methodCategories = map[string]models.ActionCategory{
	fiber.MethodGet:    models.CategoryView,
	fiber.MethodPost:   models.CategoryCreate,
	fiber.MethodPut:    models.CategoryUpdate,
	fiber.MethodPatch:  models.CategoryUpdate,
	fiber.MethodDelete: models.CategoryDelete,
}

// pathExtractors recognise resource paths and recover the audit target
// from the URL.
var pathExtractors = []struct {
	pattern *regexp.Regexp
	typeTag string
}{
	{regexp.MustCompile(`^/api/documents/(\d+)`), "Document"},
	{regexp.MustCompile(`^/api/timetables/(\d+)`), "TimetableLesson"},
	{regexp.MustCompile(`^/api/students/(\d+)`), "Student"},
}

var skippedPathPrefixes = []string{"/static/", "/admin/", "/metrics", "/healthz", "/api/v1/health"}

// AuditTrail records one audit entry per authenticated, successfully
// processed request. It is a producer only: it never touches the entry
// store directly and never changes the HTTP response.
func AuditTrail(recorder *audit.Recorder, logger zerolog.Logger) fiber.Handler {
	trailLogger := logger.With().Str("component", "audit_trail").Logger()

	return func(c *fiber.Ctx) error {
		err := c.Next()

		func() {
			defer func() {
				if recovered := recover(); recovered != nil {
					trailLogger.Debug().Interface("panic", recovered).Msg("request audit recovered from panic")
				}
			}()
			logRequest(c, recorder, trailLogger)
		}()

		return err
	}
}

func logRequest(c *fiber.Ctx, recorder *audit.Recorder, logger zerolog.Logger) {
	if audit.TestModeEnabled() {
		return
	}

	path := c.Path()
	for _, prefix := range skippedPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return
		}
	}

	// Websocket upgrades are observed by the feed itself.
	if strings.HasSuffix(path, "/ws") {
		return
	}

	actor, _ := c.Locals("user").(*models.User)
	if actor == nil {
		return
	}

	status := c.Response().StatusCode()
	if status == fiber.StatusUnauthorized || status == fiber.StatusForbidden {
		return
	}

	method := c.Method()
	category, ok := methodCategories[method]
	if !ok {
		category = models.CategoryOther
	}

	metadata := map[string]interface{}{
		"method":      method,
		"path":        path,
		"status_code": status,
	}
	if queries := c.Queries(); len(queries) > 0 {
		params := make(map[string]interface{}, len(queries))
		for key, value := range queries {
			params[key] = value
		}
		metadata["query_params"] = params
	}

	recorder.RecordEntryAsync(c.UserContext(), audit.Entry{
		Actor:     actor,
		Action:    fmt.Sprintf("%s %s", method, path),
		Category:  category,
		Target:    extractTarget(path),
		Metadata:  metadata,
		IPAddress: clientIP(c),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})
}

// pathTarget is the weak target recovered from a URL; the referenced row
// may not exist anymore by the time the entry is read.
type pathTarget struct {
	typeTag string
	id      uint
}

func (t pathTarget) EntityID() uint     { return t.id }
func (t pathTarget) EntityType() string { return t.typeTag }

func extractTarget(path string) audit.Entity {
	for _, extractor := range pathExtractors {
		match := extractor.pattern.FindStringSubmatch(path)
		if match == nil {
			continue
		}
		id, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil || id == 0 {
			continue
		}
		return pathTarget{typeTag: extractor.typeTag, id: uint(id)}
	}
	return nil
}

func clientIP(c *fiber.Ctx) string {
	forwarded := c.Get(fiber.HeaderXForwardedFor)
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	return c.IP()
}
