package audit

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/skuldata/skuldata-api/internal/models"
	"github.com/skuldata/skuldata-api/internal/observability"
	"github.com/skuldata/skuldata-api/internal/repository"
)

const maxActionLength = 255

// Entry captures everything needed to persist one audit record.
type Entry struct {
	Actor     Actor
	Action    string
	Category  models.ActionCategory
	Target    Entity
	Metadata  map[string]interface{}
	IPAddress string
	UserAgent string
	Timestamp time.Time
}

// RecorderConfig sizes the async worker pool.
type RecorderConfig struct {
	Workers   int
	QueueSize int
}

// Recorder is the single write surface of the audit engine. Every public
// method degrades to "no entry written" on failure: auditing is strictly
// best-effort relative to the operation it observes, so no error ever
// reaches the caller.
type Recorder struct {
	repo      repository.ActionLogRepository
	sanitizer *bluemonday.Policy
	pool      *workerPool
	logger    zerolog.Logger

	mu      sync.RWMutex
	onEntry func(models.ActionLog)
}

// NewRecorder constructs the audit recorder and starts its worker pool.
func NewRecorder(repo repository.ActionLogRepository, cfg RecorderConfig, logger zerolog.Logger) *Recorder {
	return &Recorder{
		repo:      repo,
		sanitizer: bluemonday.StrictPolicy(),
		pool:      newWorkerPool(cfg.Workers, cfg.QueueSize, logger),
		logger:    logger.With().Str("component", "audit_recorder").Logger(),
	}
}

// OnEntry registers a callback invoked after every durably written entry.
// The live feed uses it; the callback must not block.
func (r *Recorder) OnEntry(fn func(models.ActionLog)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEntry = fn
}

// Close drains the async queue and waits for in-flight writes.
func (r *Recorder) Close() {
	r.pool.stop()
}

// Record synchronously writes one audit entry and returns it, or nil when
// nothing was written. A nil actor produces a system-tagged entry; an actor
// without a persisted identity silently skips the write, because an entry
// attributed to a not-yet-existing principal would reference nothing real.
func (r *Recorder) Record(ctx context.Context, actor Actor, action string, category models.ActionCategory, target Entity, metadata map[string]interface{}) *models.ActionLog {
	return r.RecordEntry(ctx, Entry{
		Actor:    actor,
		Action:   action,
		Category: category,
		Target:   target,
		Metadata: metadata,
	})
}

// RecordSystem writes a system-initiated entry with no actor.
func (r *Recorder) RecordSystem(ctx context.Context, action string, category models.ActionCategory, target Entity, metadata map[string]interface{}) *models.ActionLog {
	merged := map[string]interface{}{"system": true}
	for key, value := range metadata {
		merged[key] = value
	}
	return r.RecordEntry(ctx, Entry{
		Action:   action,
		Category: category,
		Target:   target,
		Metadata: merged,
	})
}

// RecordEntry is the synchronous write path behind Record.
func (r *Recorder) RecordEntry(ctx context.Context, entry Entry) (logged *models.ActionLog) {
	defer func() {
		if recovered := recover(); recovered != nil {
			r.logger.Debug().Interface("panic", recovered).Msg("audit record recovered from panic")
			logged = nil
		}
	}()

	model, ok := r.buildModel(entry)
	if !ok {
		return nil
	}

	if err := r.repo.Create(ctx, model); err != nil {
		r.logger.Debug().Err(err).Str("action", model.Action).Msg("audit entry not written")
		return nil
	}

	observability.AuditRecorded().WithLabelValues(string(model.Category)).Inc()
	r.notify(*model)
	return model
}

// RecordAsync records without blocking the caller. In test mode it runs
// inline. Inside an open transaction it registers a post-commit callback
// that is discarded on rollback. Otherwise it hands off to the bounded
// worker pool.
func (r *Recorder) RecordAsync(ctx context.Context, actor Actor, action string, category models.ActionCategory, target Entity, metadata map[string]interface{}) {
	r.RecordEntryAsync(ctx, Entry{
		Actor:    actor,
		Action:   action,
		Category: category,
		Target:   target,
		Metadata: metadata,
	})
}

// RecordEntryAsync is the non-blocking write path behind RecordAsync.
func (r *Recorder) RecordEntryAsync(ctx context.Context, entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	if TestModeEnabled() {
		r.RecordEntry(ctx, entry)
		return
	}

	// Values such as the ambient actor must survive request teardown.
	detached := context.WithoutCancel(ctx)

	if hooks := TxFromContext(ctx); hooks != nil && hooks.IsOpen() {
		hooks.OnCommit(func() {
			r.RecordEntry(detached, entry)
		})
		return
	}

	r.pool.submit(func() {
		r.RecordEntry(detached, entry)
	})
}

// buildModel validates and assembles the persistable record; false means
// the entry should be silently skipped.
func (r *Recorder) buildModel(entry Entry) (*models.ActionLog, bool) {
	action := strings.TrimSpace(r.sanitizer.Sanitize(entry.Action))
	if action == "" {
		r.logger.Debug().Msg("audit entry skipped: empty action")
		return nil, false
	}
	if len(action) > maxActionLength {
		cut := maxActionLength
		for cut > 0 && !utf8.RuneStart(action[cut]) {
			cut--
		}
		action = action[:cut]
	}

	category := entry.Category
	if !category.Valid() {
		category = models.CategoryOther
	}

	model := &models.ActionLog{
		ActorTag:  models.SystemActorTag,
		Action:    action,
		Category:  category,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
		Metadata:  SafeMetadata(action, entry.Metadata),
		Timestamp: entry.Timestamp,
	}
	if model.Timestamp.IsZero() {
		model.Timestamp = time.Now().UTC()
	}

	if !isNilActor(entry.Actor) {
		id := entry.Actor.ActorID()
		if id == 0 {
			r.logger.Debug().Str("action", action).Msg("audit entry skipped: actor not persisted")
			return nil, false
		}
		model.ActorID = &id
		model.ActorTag = entry.Actor.StableTag()
	}

	// Target fields are all-or-nothing; an unsaved target is dropped.
	if !isNilEntity(entry.Target) && entry.Target.EntityID() != 0 {
		targetType := entry.Target.EntityType()
		targetID := entry.Target.EntityID()
		model.TargetType = &targetType
		model.TargetID = &targetID
	}

	return model, true
}

func (r *Recorder) notify(entry models.ActionLog) {
	r.mu.RLock()
	fn := r.onEntry
	r.mu.RUnlock()
	if fn != nil {
		fn(entry)
	}
}
