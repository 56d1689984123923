package audit

import (
	"reflect"

	"github.com/google/uuid"

	"github.com/skuldata/skuldata-api/internal/models"
)

// Entity is the capability an auditable record must expose: a stable
// identity plus a type tag. The pair forms the polymorphic target of an
// audit entry.
type Entity interface {
	EntityID() uint
	EntityType() string
}

// Actor is the capability of a principal that actions are attributed to.
// StableTag must survive deletion of the actor record itself.
type Actor interface {
	ActorID() uint
	StableTag() uuid.UUID
}

// Tracked marks entities whose field-level changes are diffed on update.
// The returned names are database column names.
type Tracked interface {
	TrackedFields() []string
}

// Displayable provides a short human-readable form for audit metadata.
type Displayable interface {
	Display() string
}

// HasActorContext exposes the transient actor attached to an entity
// instance for a single mutation. Falls back to the request-scoped actor
// when it returns nil.
type HasActorContext interface {
	AuditActor() *models.User
}

// isNilActor treats both a nil interface and a typed nil pointer as absent.
func isNilActor(actor Actor) bool {
	if actor == nil {
		return true
	}
	rv := reflect.ValueOf(actor)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

func isNilEntity(entity Entity) bool {
	if entity == nil {
		return true
	}
	rv := reflect.ValueOf(entity)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
