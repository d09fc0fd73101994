package database

import (
	"context"

	"gorm.io/gorm"
)

// txKey is the context key carrying an open transaction
type txKey struct{}

// TransactionFromContext extracts a transaction from the context, if any.
func TransactionFromContext(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	if !ok {
		return nil
	}
	return tx
}

// ContextWithTransaction returns a context carrying the transaction.
func ContextWithTransaction(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// getDBFromContext prefers the transaction carried by the context over
// the plain connection.
func getDBFromContext(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx := TransactionFromContext(ctx); tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}
