// Package dbtx carries the active GORM transaction through a context so
// repositories called inside shared.TxManager.InTx join the same commit.
package dbtx

import (
	"context"

	"gorm.io/gorm"
)

type ctxKey struct{}

// WithTx stores tx in ctx for downstream repositories.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, tx)
}

// From returns the transaction stored in ctx, if any.
func From(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(ctxKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

// Conn returns the transaction in ctx or db, bound to ctx.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := From(ctx); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// Run executes fn inside the transaction already in ctx, or opens a new one on db.
// fn receives a context carrying the transaction.
func Run(ctx context.Context, db *gorm.DB, fn func(ctx context.Context, tx *gorm.DB) error) error {
	if tx, ok := From(ctx); ok {
		return fn(ctx, tx.WithContext(ctx))
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx), tx)
	})
}
