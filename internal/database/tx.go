package database

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// WithTx binds an open transaction handle to the context so repositories
// join it transparently.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey{}, tx)
}

// FromContext returns the transaction bound to the context, or fallback
// when the caller is not inside one.
func FromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if ctx != nil {
		if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
			return tx
		}
	}
	return fallback
}
