package ports

import (
	"context"

	"patternfactory/internal/core/domain/model/order"
)

// TransitionPublisher announces committed transitions to other services.
// Delivery is best effort; the order store remains the source of truth.
type TransitionPublisher interface {
	Publish(ctx context.Context, snapshot *order.Order, transitions []order.Transition) error
}
