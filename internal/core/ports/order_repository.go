package ports

import (
	"context"
	"errors"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
)

// OrderReader is the read side of the order store.
type OrderReader interface {
	// Get returns the stored snapshot or an *errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.OrderID) (*order.Order, error)

	// ListByState returns stored orders whose persisted state is one of states.
	ListByState(ctx context.Context, states ...order.State) ([]*order.Order, error)

	// History returns the recorded transitions of an order, oldest first.
	History(ctx context.Context, id kernel.OrderID) ([]order.Transition, error)
}

type OrderRepository interface {
	OrderReader

	// Add stores a new order together with its pending changes.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update replaces the stored order only if it still holds
	// aggregate.BaseState() under aggregate.Version(); otherwise it returns
	// an *errs.VersionIsInvalidError and stores nothing. Pending changes
	// are appended to the history in the same write.
	Update(ctx context.Context, aggregate *order.Order) error
}

// ErrOrderAlreadyExists is returned by Add when the order ID is taken.
var ErrOrderAlreadyExists = errors.New("order already exists")
