package middleware

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/skuldata/skuldata-api/internal/audit"
	"github.com/skuldata/skuldata-api/internal/models"
	"github.com/skuldata/skuldata-api/internal/repository"
)

type memTrailRepo struct {
	mu      sync.Mutex
	entries []models.ActionLog
}

func (m *memTrailRepo) Create(ctx context.Context, entry *models.ActionLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = uint(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memTrailRepo) List(ctx context.Context, filter repository.ActionLogFilter) ([]models.ActionLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ActionLog(nil), m.entries...), int64(len(m.entries)), nil
}

func (m *memTrailRepo) DistinctTargetTypes(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (m *memTrailRepo) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.entries)), nil
}

func (m *memTrailRepo) all() []models.ActionLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ActionLog(nil), m.entries...)
}

type trailFixture struct {
	app      *fiber.App
	repo     *memTrailRepo
	recorder *audit.Recorder
}

// newTrailFixture builds an app with the audit trail attached and an
// optional authenticated user injected before routing.
func newTrailFixture(t *testing.T, user *models.User) *trailFixture {
	t.Helper()

	repo := &memTrailRepo{}
	recorder := audit.NewRecorder(repo, audit.RecorderConfig{}, zerolog.Nop())

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if user != nil {
			c.Locals("user", user)
		}
		return c.Next()
	})
	app.Use(AuditTrail(recorder, zerolog.Nop()))

	return &trailFixture{app: app, repo: repo, recorder: recorder}
}

// drain waits until every queued entry has been written.
func (f *trailFixture) drain() {
	f.recorder.Close()
}

func trailUser() *models.User {
	return &models.User{ID: 3, Tag: uuid.New(), Name: "Grace Hopper", Role: "admin"}
}

func TestAuditTrailRecordsAuthenticatedRequest(t *testing.T) {
	user := trailUser()
	fixture := newTrailFixture(t, user)
	fixture.app.Get("/api/students/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/api/students/7", nil)
	req.Header.Set(fiber.HeaderXForwardedFor, "203.0.113.9, 10.0.0.1")
	req.Header.Set(fiber.HeaderUserAgent, "test-agent")
	resp, err := fixture.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	fixture.drain()
	entries := fixture.repo.all()
	require.Len(t, entries, 1)

	entry := entries[0]
	require.Equal(t, "GET /api/students/7", entry.Action)
	require.Equal(t, models.CategoryView, entry.Category)
	require.Equal(t, user.Tag, entry.ActorTag)
	require.Equal(t, "203.0.113.9", entry.IPAddress)
	require.Equal(t, "test-agent", entry.UserAgent)
	require.NotNil(t, entry.TargetType)
	require.Equal(t, "Student", *entry.TargetType)
	require.NotNil(t, entry.TargetID)
	require.Equal(t, uint(7), *entry.TargetID)
	require.Equal(t, "GET", entry.Metadata["method"])
	require.Equal(t, "/api/students/7", entry.Metadata["path"])
	require.Equal(t, 200, entry.Metadata["status_code"])
}

func TestAuditTrailMapsMethodsToCategories(t *testing.T) {
	fixture := newTrailFixture(t, trailUser())
	fixture.app.Post("/api/students", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})
	fixture.app.Delete("/api/students/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	_, err := fixture.app.Test(httptest.NewRequest(fiber.MethodPost, "/api/students", nil), -1)
	require.NoError(t, err)
	_, err = fixture.app.Test(httptest.NewRequest(fiber.MethodDelete, "/api/students/7", nil), -1)
	require.NoError(t, err)

	fixture.drain()
	entries := fixture.repo.all()
	require.Len(t, entries, 2)

	categories := map[models.ActionCategory]bool{}
	for _, entry := range entries {
		categories[entry.Category] = true
	}
	require.True(t, categories[models.CategoryCreate])
	require.True(t, categories[models.CategoryDelete])
}

func TestAuditTrailRecordsQueryParams(t *testing.T) {
	fixture := newTrailFixture(t, trailUser())
	fixture.app.Get("/api/students", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := fixture.app.Test(httptest.NewRequest(fiber.MethodGet, "/api/students?class=4A", nil), -1)
	require.NoError(t, err)

	fixture.drain()
	entries := fixture.repo.all()
	require.Len(t, entries, 1)

	params, ok := entries[0].Metadata["query_params"].(datatypes.JSONMap)
	require.True(t, ok)
	require.Equal(t, "4A", params["class"])
}

func TestAuditTrailSkipsAnonymousRequests(t *testing.T) {
	fixture := newTrailFixture(t, nil)
	fixture.app.Get("/api/students", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := fixture.app.Test(httptest.NewRequest(fiber.MethodGet, "/api/students", nil), -1)
	require.NoError(t, err)

	fixture.drain()
	require.Empty(t, fixture.repo.all())
}

func TestAuditTrailSkipsDeniedRequests(t *testing.T) {
	fixture := newTrailFixture(t, trailUser())
	fixture.app.Get("/api/students", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusForbidden)
	})

	_, err := fixture.app.Test(httptest.NewRequest(fiber.MethodGet, "/api/students", nil), -1)
	require.NoError(t, err)

	fixture.drain()
	require.Empty(t, fixture.repo.all())
}

func TestAuditTrailSkipsInfrastructurePaths(t *testing.T) {
	fixture := newTrailFixture(t, trailUser())
	fixture.app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	fixture.app.Get("/api/v1/health", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	fixture.app.Get("/api/admin/feed/ws", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for _, path := range []string{"/metrics", "/api/v1/health", "/api/admin/feed/ws"} {
		_, err := fixture.app.Test(httptest.NewRequest(fiber.MethodGet, path, nil), -1)
		require.NoError(t, err)
	}

	fixture.drain()
	require.Empty(t, fixture.repo.all())
}

func TestAuditTrailSuppressedInTestMode(t *testing.T) {
	audit.SetTestMode(true)
	t.Cleanup(func() { audit.SetTestMode(false) })

	fixture := newTrailFixture(t, trailUser())
	fixture.app.Get("/api/students", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := fixture.app.Test(httptest.NewRequest(fiber.MethodGet, "/api/students", nil), -1)
	require.NoError(t, err)

	fixture.drain()
	require.Empty(t, fixture.repo.all())
}
