package audit

import (
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type snapshotKey struct{}
type extractKey struct{}

// Plugin hooks the persistence layer so every create, update and delete of
// an auditable entity raises a typed event on the bus. Only values
// implementing the Entity capability are observed; everything else,
// including the audit record itself, passes through untouched.
type Plugin struct {
	bus    *Bus
	logger zerolog.Logger
}

// NewPlugin constructs the observer plugin for db.Use.
func NewPlugin(bus *Bus, logger zerolog.Logger) *Plugin {
	return &Plugin{
		bus:    bus,
		logger: logger.With().Str("component", "audit_gorm_plugin").Logger(),
	}
}

// Name implements gorm.Plugin.
func (p *Plugin) Name() string {
	return "audit"
}

// Initialize implements gorm.Plugin and registers the lifecycle callbacks.
func (p *Plugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Create().After("gorm:create").Register("audit:after_create", p.afterCreate); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("audit:before_update", p.beforeUpdate); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").Register("audit:after_update", p.afterUpdate); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("audit:before_delete", p.beforeDelete); err != nil {
		return err
	}
	return db.Callback().Delete().After("gorm:delete").Register("audit:after_delete", p.afterDelete)
}

func (p *Plugin) afterCreate(db *gorm.DB) {
	if db.Error != nil || db.Statement == nil {
		return
	}
	entity := entityFromStatement(db.Statement)
	if entity == nil || entity.EntityID() == 0 {
		return
	}

	p.bus.Publish(db.Statement.Context, EntityEvent{
		Kind:   EntityCreated,
		Entity: entity,
		Actor:  transientActor(db.Statement),
	})
}

// beforeUpdate snapshots the tracked columns so the post-write callback can
// diff them. Best effort: a failed read just means the update is reported
// without a change set and therefore not logged.
func (p *Plugin) beforeUpdate(db *gorm.DB) {
	stmt := db.Statement
	if stmt == nil {
		return
	}
	entity := entityFromStatement(stmt)
	if entity == nil || entity.EntityID() == 0 {
		return
	}
	tracked, ok := entity.(Tracked)
	if !ok {
		return
	}

	table := stmt.Table
	if table == "" && stmt.Schema != nil {
		table = stmt.Schema.Table
	}
	if table == "" {
		return
	}

	// NewDB keeps the statement's connection, so inside a transaction the
	// snapshot sees that transaction's pre-update state.
	old := map[string]interface{}{}
	err := db.Session(&gorm.Session{NewDB: true}).
		Table(table).
		Select(tracked.TrackedFields()).
		Where("id = ?", entity.EntityID()).
		Take(&old).Error
	if err != nil {
		p.logger.Debug().Err(err).Str("table", table).Msg("tracked field snapshot unavailable")
		return
	}

	stmt.Settings.Store(snapshotKey{}, old)
}

func (p *Plugin) afterUpdate(db *gorm.DB) {
	if db.Error != nil || db.Statement == nil || db.RowsAffected == 0 {
		return
	}
	stmt := db.Statement
	entity := entityFromStatement(stmt)
	if entity == nil || entity.EntityID() == 0 {
		return
	}

	event := EntityEvent{
		Kind:   EntityUpdated,
		Entity: entity,
		Actor:  transientActor(stmt),
	}

	if tracked, ok := entity.(Tracked); ok && stmt.Schema != nil {
		if raw, found := stmt.Settings.Load(snapshotKey{}); found {
			if old, ok := raw.(map[string]interface{}); ok {
				event.Changes = diffTrackedFields(db, tracked.TrackedFields(), old)
			}
		}
	}

	p.bus.Publish(stmt.Context, event)
}

func (p *Plugin) beforeDelete(db *gorm.DB) {
	stmt := db.Statement
	if stmt == nil {
		return
	}
	entity := entityFromStatement(stmt)
	if entity == nil || entity.EntityID() == 0 {
		return
	}

	// The row is unresolvable after the delete, so grab what readers may
	// want to see now.
	extract := map[string]interface{}{
		"deleted_id": entity.EntityID(),
	}
	if display, ok := entity.(Displayable); ok {
		extract["display"] = display.Display()
	}
	stmt.Settings.Store(extractKey{}, extract)
}

func (p *Plugin) afterDelete(db *gorm.DB) {
	if db.Error != nil || db.Statement == nil || db.RowsAffected == 0 {
		return
	}
	stmt := db.Statement
	entity := entityFromStatement(stmt)
	if entity == nil || entity.EntityID() == 0 {
		return
	}

	event := EntityEvent{
		Kind:   EntityDeleted,
		Entity: entity,
		Actor:  transientActor(stmt),
	}
	if raw, found := stmt.Settings.Load(extractKey{}); found {
		if extract, ok := raw.(map[string]interface{}); ok {
			event.Extract = extract
		}
	}

	p.bus.Publish(stmt.Context, event)
}

func diffTrackedFields(db *gorm.DB, columns []string, old map[string]interface{}) *ChangeSet {
	stmt := db.Statement
	changes := &ChangeSet{
		Old: map[string]interface{}{},
		New: map[string]interface{}{},
	}

	for _, column := range columns {
		field := stmt.Schema.LookUpField(column)
		if field == nil {
			continue
		}
		oldValue, known := old[column]
		if !known {
			continue
		}
		newValue, _ := field.ValueOf(stmt.Context, stmt.ReflectValue)
		if stringify(oldValue) == stringify(newValue) {
			continue
		}
		changes.Fields = append(changes.Fields, column)
		changes.Old[column] = stringify(oldValue)
		changes.New[column] = stringify(newValue)
	}

	return changes
}

func entityFromStatement(stmt *gorm.Statement) Entity {
	if entity, ok := stmt.Dest.(Entity); ok && !isNilEntity(entity) {
		return entity
	}
	if entity, ok := stmt.Model.(Entity); ok && !isNilEntity(entity) {
		return entity
	}
	return nil
}

func transientActor(stmt *gorm.Statement) Actor {
	holders := []interface{}{stmt.Dest, stmt.Model}
	for _, holder := range holders {
		if ctx, ok := holder.(HasActorContext); ok {
			if user := ctx.AuditActor(); user != nil {
				return user
			}
		}
	}
	return nil
}
