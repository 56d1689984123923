package audit

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/skuldata/skuldata-api/internal/database"
)

type txHooksKey struct{}

// TxHooks is the post-commit capability of an open transaction. Callbacks
// registered while the transaction is open run only after a successful
// commit; a rollback discards them. That is the core ordering invariant:
// an audit entry must never outlive a rolled-back cause.
type TxHooks struct {
	mu        sync.Mutex
	open      bool
	committed bool
	parent    *TxHooks
	callbacks []func()
}

func newTxHooks() *TxHooks {
	return &TxHooks{open: true}
}

// IsOpen reports whether the transaction is still in flight.
func (h *TxHooks) IsOpen() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.open
}

// OnCommit defers fn until the transaction commits. Registering against an
// already-settled transaction runs fn immediately when it committed and
// discards it otherwise.
func (h *TxHooks) OnCommit(fn func()) {
	h.mu.Lock()
	if h.open {
		h.callbacks = append(h.callbacks, fn)
		h.mu.Unlock()
		return
	}
	committed := h.committed
	parent := h.parent
	h.mu.Unlock()

	// A released savepoint defers to its enclosing transaction.
	if parent != nil {
		parent.OnCommit(fn)
		return
	}
	if committed {
		fn()
	}
}

// settle closes the transaction and, on commit, fires the registered
// callbacks in registration order.
func (h *TxHooks) settle(committed bool) {
	h.mu.Lock()
	h.open = false
	h.committed = committed
	callbacks := h.callbacks
	h.callbacks = nil
	h.mu.Unlock()

	if !committed {
		return
	}
	for _, fn := range callbacks {
		fn()
	}
}

// adoptInto closes h and hands its callbacks to the enclosing transaction,
// which fires them on its own commit. Used when a savepoint is released:
// the inner scope succeeded, but its writes are durable only once the
// outer transaction commits.
func (h *TxHooks) adoptInto(parent *TxHooks) {
	h.mu.Lock()
	h.open = false
	h.parent = parent
	callbacks := h.callbacks
	h.callbacks = nil
	h.mu.Unlock()

	for _, fn := range callbacks {
		parent.OnCommit(fn)
	}
}

// TxFromContext returns the hooks of the enclosing transaction, nil when
// the caller is not inside one.
func TxFromContext(ctx context.Context) *TxHooks {
	if ctx == nil {
		return nil
	}
	if hooks, ok := ctx.Value(txHooksKey{}).(*TxHooks); ok {
		return hooks
	}
	return nil
}

// RunInTransaction wraps db.Transaction and threads post-commit hooks
// through the context handed to fn. Nested calls run under a savepoint
// with their own hook set: a rolled-back savepoint discards its hooks
// even when the outer transaction goes on to commit, and a released
// savepoint hands its hooks to the outer transaction.
func RunInTransaction(ctx context.Context, db *gorm.DB, fn func(ctx context.Context, tx *gorm.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if outer := TxFromContext(ctx); outer != nil && outer.IsOpen() {
		child := newTxHooks()
		childCtx := context.WithValue(ctx, txHooksKey{}, child)
		err := database.FromContext(ctx, db).WithContext(childCtx).Transaction(func(tx *gorm.DB) error {
			return fn(database.WithTx(childCtx, tx), tx)
		})
		if err != nil {
			child.settle(false)
			return err
		}
		child.adoptInto(outer)
		return nil
	}

	hooks := newTxHooks()
	txCtx := context.WithValue(ctx, txHooksKey{}, hooks)

	err := db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		return fn(database.WithTx(txCtx, tx), tx)
	})
	hooks.settle(err == nil)
	return err
}
