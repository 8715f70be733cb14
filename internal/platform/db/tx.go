package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrTransactionConflict is returned when a unit of work kept failing with
// serialization or deadlock errors after every retry.
var ErrTransactionConflict = errors.New("transaction conflict, retry later")

type txKey struct{}

// WithTx returns a context that carries tx. Repositories resolve their
// connection through Conn so they join the caller's transaction.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext reports the transaction carried by ctx, if any.
func TxFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

// Conn returns the transaction carried by ctx or the fallback handle, bound
// to ctx either way.
func Conn(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := TxFromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}

// Transactor runs units of work in a single gorm transaction.
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return Transactor{db: db}
}

// WithinTx joins the transaction already carried by ctx or opens a new one.
func (t Transactor) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}
