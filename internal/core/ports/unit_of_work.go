package ports

import (
	"context"

	"patternfactory/internal/core/domain/model/order"
)

type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

type UnitOfWork interface {
	Begin(ctx context.Context) error

	Commit(ctx context.Context) error

	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository

	// TrackedOrders returns the orders written since Begin, each with the
	// transitions it recorded. It is empty after Rollback.
	TrackedOrders() []*order.Order
}
