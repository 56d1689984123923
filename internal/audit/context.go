package audit

import (
	"context"
	"sync"
)

type actorContextKey struct{}

// WithActor binds the acting principal to the context. The JWT middleware
// sets it once per request; every recording path downstream inherits it.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if isNilActor(actor) {
		return ctx
	}
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the ambient actor, nil when none is bound.
func ActorFromContext(ctx context.Context) Actor {
	if ctx == nil {
		return nil
	}
	if actor, ok := ctx.Value(actorContextKey{}).(Actor); ok {
		return actor
	}
	return nil
}

var testMode struct {
	mu      sync.RWMutex
	enabled bool
}

// SetTestMode forces every async recording path to run inline so tests see
// deterministic, synchronous entries. Test harnesses must not toggle it
// from concurrently running suites.
func SetTestMode(enabled bool) {
	testMode.mu.Lock()
	defer testMode.mu.Unlock()
	testMode.enabled = enabled
}

// TestModeEnabled reports whether synchronous test mode is active.
func TestModeEnabled() bool {
	testMode.mu.RLock()
	defer testMode.mu.RUnlock()
	return testMode.enabled
}
