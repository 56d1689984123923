package audit

import (
	"context"
	"sync"
)

// EventKind identifies the lifecycle stage an entity event describes.
type EventKind string

const (
	EntityCreated EventKind = "created"
	EntityUpdated EventKind = "updated"
	EntityDeleted EventKind = "deleted"
)

// ChangeSet lists the tracked fields that actually differed on an update,
// with stringified before/after values.
type ChangeSet struct {
	Fields []string
	Old    map[string]interface{}
	New    map[string]interface{}
}

// Empty reports whether no tracked field changed.
func (c *ChangeSet) Empty() bool {
	return c == nil || len(c.Fields) == 0
}

// EntityEvent is the typed payload published by the persistence layer for
// every observed mutation. Entity and Actor are capability interfaces; the
// bus knows nothing about concrete domain types.
type EntityEvent struct {
	Kind    EventKind
	Entity  Entity
	Actor   Actor
	Changes *ChangeSet
	// Extract holds a best-effort snapshot captured before a delete,
	// since the target cannot be resolved afterwards.
	Extract map[string]interface{}
}

// EventHandler consumes entity events. Handlers must not panic the bus.
type EventHandler func(ctx context.Context, event EntityEvent)

// Bus fans entity events out to subscribers, synchronously and in
// subscription order. Subscribers that need decoupling from the caller
// defer their own work.
type Bus struct {
	mu       sync.RWMutex
	handlers []EventHandler
}

// NewBus constructs an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all subsequent events.
func (b *Bus) Subscribe(handler EventHandler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Publish delivers the event to every subscriber.
func (b *Bus) Publish(ctx context.Context, event EntityEvent) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, event)
	}
}
