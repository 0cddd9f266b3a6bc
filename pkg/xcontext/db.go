package xcontext

import (
	"context"

	"gorm.io/gorm"
)

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the running transaction if ctx carries one, otherwise the root database bound
// to ctx.
func DB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(dbTxKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		panic("xcontext: database is not bound to the context")
	}

	return db.WithContext(ctx)
}

// WithDBTransaction begins a transaction; every later DB(ctx) call on the returned context
// runs inside it.
func WithDBTransaction(ctx context.Context) context.Context {
	tx := DB(ctx).Begin()
	return context.WithValue(ctx, dbTxKey{}, tx)
}

// WithCommitDBTransaction commits the transaction carried by ctx. The returned context no
// longer carries it.
func WithCommitDBTransaction(ctx context.Context) (context.Context, error) {
	tx, ok := ctx.Value(dbTxKey{}).(*gorm.DB)
	if !ok || tx == nil {
		return ctx, nil
	}

	err := tx.Commit().Error
	return context.WithValue(ctx, dbTxKey{}, (*gorm.DB)(nil)), err
}

// WithRollbackDBTransaction rollbacks the transaction carried by ctx. Calling it after the
// transaction has been committed is a no-op.
func WithRollbackDBTransaction(ctx context.Context) context.Context {
	tx, ok := ctx.Value(dbTxKey{}).(*gorm.DB)
	if !ok || tx == nil {
		return ctx
	}

	tx.Rollback()
	return context.WithValue(ctx, dbTxKey{}, (*gorm.DB)(nil))
}

func InTransaction(ctx context.Context) bool {
	tx, ok := ctx.Value(dbTxKey{}).(*gorm.DB)
	return ok && tx != nil
}
