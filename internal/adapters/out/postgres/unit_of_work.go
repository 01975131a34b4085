// Package postgres provides the GORM-based Unit of Work over the order
// store, plus its schema migrations.
//
// Usage:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.OrderRepository().Update(ctx, next); err != nil {
//	    return err
//	}
//	if err := uow.Commit(ctx); err != nil {
//	    return err
//	}
//
//	for _, o := range uow.TrackedOrders() {
//	    publisher.Publish(ctx, o, o.Changes())
//	}
//
// Each UnitOfWork instance owns one transaction; goroutines must not share
// an instance.
package postgres

import (
	"context"
	"slices"

	"patternfactory/internal/adapters/out/postgres/orderrepo"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/ports"

	"gorm.io/gorm"
)

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection pool.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work instances.
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{db: f.db}
}

// GormUnitOfWork wraps a GORM transaction and records which orders were
// written through it, so that their transitions can be published once the
// transaction is committed.
type GormUnitOfWork struct {
	db            *gorm.DB
	tx            *gorm.DB
	trackedOrders []*order.Order
}

// Begin starts the transaction. Calling Begin again while a transaction is
// open does nothing.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	uow.trackedOrders = nil
	return nil
}

// Commit finalizes the transaction. Tracked orders stay available.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	if err != nil {
		uow.trackedOrders = nil
	}
	return err
}

// Rollback discards the transaction and the tracked orders. It returns
// gorm.ErrInvalidTransaction when nothing is open, which makes a deferred
// Rollback after Commit harmless.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedOrders = nil
	return err
}

// OrderRepository runs inside the open transaction, or directly on the
// pool when none is open.
func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	db := uow.db
	if uow.tx != nil {
		db = uow.tx
	}
	return orderrepo.NewGormOrderRepository(db, uow)
}

func (uow *GormUnitOfWork) TrackedOrders() []*order.Order {
	return slices.Clone(uow.trackedOrders)
}

// TrackAggregate is called by repositories after each successful write.
func (uow *GormUnitOfWork) TrackAggregate(aggregate *order.Order) {
	uow.trackedOrders = append(uow.trackedOrders, aggregate)
}
