package audit

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/skuldata/skuldata-api/internal/models"
)

// Observer turns entity lifecycle events into audit entries. It resolves
// the acting principal from the event (transient actor on the instance)
// with the ambient request actor as fallback; an untracked mutation with
// neither is not logged at all, which keeps it distinguishable from
// explicit system operations.
type Observer struct {
	recorder *Recorder
	logger   zerolog.Logger
	deny     map[string]struct{}
}

// NewObserver constructs the observer with the default deny-list. The
// audit record type itself is always denied to stop self-logging loops.
func NewObserver(recorder *Recorder, logger zerolog.Logger) *Observer {
	return &Observer{
		recorder: recorder,
		logger:   logger.With().Str("component", "audit_observer").Logger(),
		deny: map[string]struct{}{
			"ActionLog": {},
		},
	}
}

// Deny excludes an entity type tag from observation.
func (o *Observer) Deny(typeTag string) {
	o.deny[typeTag] = struct{}{}
}

// Attach subscribes the observer to the bus.
func (o *Observer) Attach(bus *Bus) {
	bus.Subscribe(o.handle)
}

func (o *Observer) handle(ctx context.Context, event EntityEvent) {
	if isNilEntity(event.Entity) {
		return
	}

	typeTag := event.Entity.EntityType()
	if _, denied := o.deny[typeTag]; denied {
		return
	}

	actor := event.Actor
	if isNilActor(actor) {
		actor = ActorFromContext(ctx)
	}
	if isNilActor(actor) {
		o.logger.Debug().Str("entity_type", typeTag).Str("kind", string(event.Kind)).Msg("mutation not attributed, skipping audit entry")
		return
	}

	switch event.Kind {
	case EntityCreated:
		o.recorder.RecordEntryAsync(ctx, Entry{
			Actor:    actor,
			Action:   fmt.Sprintf("Created %s: %s", typeTag, displayOf(event.Entity)),
			Category: models.CategoryCreate,
			Target:   event.Entity,
			Metadata: map[string]interface{}{"display": displayOf(event.Entity)},
		})
	case EntityUpdated:
		// Updates with no tracked-field diff are deliberately silent.
		if event.Changes.Empty() {
			return
		}
		o.recorder.RecordEntryAsync(ctx, Entry{
			Actor:    actor,
			Action:   fmt.Sprintf("Updated %s: %s", typeTag, displayOf(event.Entity)),
			Category: models.CategoryUpdate,
			Target:   event.Entity,
			Metadata: map[string]interface{}{
				"fields_changed": event.Changes.Fields,
				"old_values":     event.Changes.Old,
				"new_values":     event.Changes.New,
			},
		})
	case EntityDeleted:
		metadata := map[string]interface{}{"display": displayOf(event.Entity)}
		for key, value := range event.Extract {
			metadata[key] = value
		}
		o.recorder.RecordEntryAsync(ctx, Entry{
			Actor:    actor,
			Action:   fmt.Sprintf("Deleted %s: %s", typeTag, displayOf(event.Entity)),
			Category: models.CategoryDelete,
			Target:   event.Entity,
			Metadata: metadata,
		})
	}
}

func displayOf(entity Entity) string {
	if display, ok := entity.(Displayable); ok {
		return display.Display()
	}
	return fmt.Sprintf("%s#%d", entity.EntityType(), entity.EntityID())
}
