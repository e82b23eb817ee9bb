package uow

import (
	"context"

	"gorm.io/gorm"

	"promette/internal/ports"
)

// UnitOfWork implements ports.UnitOfWork with gorm. SQLite serializes
// writers, so a transaction here is also the mutual exclusion that keeps
// folio issuance and state appends race-free.
type UnitOfWork struct {
	db *gorm.DB
}

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ports.WithTxContext(ctx, tx))
	})
}
