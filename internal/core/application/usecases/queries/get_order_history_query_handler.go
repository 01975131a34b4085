package queries

import (
	"context"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/ports"
)

type GetOrderHistoryQueryHandler struct {
	reader ports.OrderReader
	clock  kernel.Clock
}

func NewGetOrderHistoryQueryHandler(reader ports.OrderReader, clock kernel.Clock) GetOrderHistoryQueryHandler {
	return GetOrderHistoryQueryHandler{reader: reader, clock: clock}
}

// Handle returns the stored transitions followed by the automatic ones that
// are due but not yet stored.
func (h GetOrderHistoryQueryHandler) Handle(ctx context.Context, query GetOrderHistoryQuery) ([]order.Transition, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	history, err := h.reader.History(ctx, query.OrderID())
	if err != nil {
		return nil, err
	}

	stored, err := h.reader.Get(ctx, query.OrderID())
	if err != nil {
		return nil, err
	}
	return append(history, order.Resolve(stored, h.clock.Now()).Changes()...), nil
}
