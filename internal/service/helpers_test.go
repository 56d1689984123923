package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skuldata/skuldata-api/internal/audit"
	"github.com/skuldata/skuldata-api/internal/models"
	"github.com/skuldata/skuldata-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// auditStore is an in-memory entry store. The recorder writes inline while
// the domain transaction is still open, so entries must not go through the
// shared sqlite handle.
type auditStore struct {
	mu      sync.Mutex
	entries []models.ActionLog
}

func (s *auditStore) Create(ctx context.Context, entry *models.ActionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = uint(len(s.entries) + 1)
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *auditStore) List(ctx context.Context, filter repository.ActionLogFilter) ([]models.ActionLog, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	filtered := make([]models.ActionLog, 0, len(s.entries))
	for _, entry := range s.entries {
		if filter.Category != "" && entry.Category != filter.Category {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered, int64(len(filtered)), nil
}

func (s *auditStore) DistinctTargetTypes(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (s *auditStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.entries)), nil
}

func (s *auditStore) byCategory(category models.ActionCategory) []models.ActionLog {
	entries, _, _ := s.List(context.Background(), repository.ActionLogFilter{Category: category})
	return entries
}

func (s *auditStore) all() []models.ActionLog {
	entries, _, _ := s.List(context.Background(), repository.ActionLogFilter{})
	return entries
}

// setupAuditedDB builds an in-memory database with the full audit pipeline
// attached: recorder, entity bus, observer and the lifecycle plugin. Test
// mode forces async recording inline so entries are visible immediately.
func setupAuditedDB(t *testing.T) (*gorm.DB, *auditStore) {
	t.Helper()

	audit.SetTestMode(true)
	t.Cleanup(func() { audit.SetTestMode(false) })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.ActionLog{}, &models.Student{}, &models.Document{}, &models.TimetableLesson{}))

	store := &auditStore{}
	recorder := audit.NewRecorder(store, audit.RecorderConfig{}, testLogger())
	t.Cleanup(recorder.Close)

	bus := audit.NewBus()
	audit.NewObserver(recorder, testLogger()).Attach(bus)
	require.NoError(t, db.Use(audit.NewPlugin(bus, testLogger())))

	return db, store
}

func newAuditedRecorder(t *testing.T, store *auditStore) *audit.Recorder {
	t.Helper()
	recorder := audit.NewRecorder(store, audit.RecorderConfig{}, testLogger())
	t.Cleanup(recorder.Close)
	return recorder
}

func seedServiceUser(t *testing.T, db *gorm.DB, email, password, role string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Tag:          uuid.New(),
		Email:        email,
		Name:         "Grace Hopper",
		Role:         role,
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}
