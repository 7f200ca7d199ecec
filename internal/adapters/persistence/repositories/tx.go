package repositories

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// GormTransactor implements Transactor over a gorm transaction. The
// transaction handle rides in the context so repositories created over
// the base connection automatically join an open unit of work.
type GormTransactor struct {
	db *gorm.DB
}

// NewGormTransactor creates a new transactor
func NewGormTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

// Transact runs fn inside a single database transaction. A non-nil
// error from fn rolls back every repository call made with fn's ctx.
func (t *GormTransactor) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn resolves the connection for a call: the transaction carried by
// ctx when inside Transact, the base connection otherwise.
func conn(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return base.WithContext(ctx)
}
