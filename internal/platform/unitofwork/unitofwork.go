// Package unitofwork groups repository calls into a single commit boundary.
package unitofwork

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"
)

// Transactor runs fn inside a transaction scope carried by the context passed to fn.
// Nested calls join the outer scope.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type gormTxKey struct{}

// GormTransactor opens PostgreSQL transactions through GORM.
type GormTransactor struct {
	db *gorm.DB
}

// NewGormTransactor wires a transactor around the shared connection pool.
func NewGormTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

// WithinTx commits when fn returns nil and rolls back otherwise.
func (t *GormTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if t == nil || t.db == nil {
		return errors.New("gorm transactor not configured")
	}
	if _, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, gormTxKey{}, tx))
	})
}

// DB returns the transaction bound to ctx, or fallback when ctx carries none.
func DB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}

type localTxKey struct{}

// LocalTransactor serializes compound operations against in-memory adapters.
// It offers isolation but no rollback; callers validate before their first write.
type LocalTransactor struct {
	mu sync.Mutex
}

func NewLocalTransactor() *LocalTransactor {
	return &LocalTransactor{}
}

func (t *LocalTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if owner, ok := ctx.Value(localTxKey{}).(*LocalTransactor); ok && owner == t {
		return fn(ctx)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(context.WithValue(ctx, localTxKey{}, t))
}

var (
	_ Transactor = (*GormTransactor)(nil)
	_ Transactor = (*LocalTransactor)(nil)
)
