package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/shared"
)

type txKey struct{}

// GormTransactor implements shared.Transactor. The open transaction travels in
// the context, so every repository called with that context joins it.
type GormTransactor struct {
	db *gorm.DB
}

// NewGormTransactor creates a new GormTransactor
func NewGormTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

// Transaction runs fn inside a transaction. A nested call reuses the outer
// transaction. The transaction rolls back when fn returns an error.
func (t *GormTransactor) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction carried by ctx, or db bound to ctx.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// translateError maps GORM errors onto domain errors.
func translateError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NotFound(entity + " not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.WrapDomainError("ALREADY_EXISTS", entity+" already exists", err)
	default:
		return err
	}
}

// checkLocked converts a zero-row versioned update into a concurrency conflict.
func checkLocked(result *gorm.DB, entity string) error {
	if result.Error != nil {
		return translateError(result.Error, entity)
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", entity+" was modified by another request")
	}
	return nil
}

// checkDeleted converts a zero-row delete into not-found.
func checkDeleted(result *gorm.DB, entity string) error {
	if result.Error != nil {
		return translateError(result.Error, entity)
	}
	if result.RowsAffected == 0 {
		return shared.NotFound(entity + " not found")
	}
	return nil
}

// withTx runs fn on the transaction carried by ctx, or opens one for the
// duration of fn when ctx has none.
func withTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(tx.WithContext(ctx))
	}
	return db.WithContext(ctx).Transaction(fn)
}

var _ shared.Transactor = (*GormTransactor)(nil)
