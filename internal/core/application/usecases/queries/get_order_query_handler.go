package queries

import (
	"context"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/ports"
)

type GetOrderQueryHandler struct {
	reader ports.OrderReader
	clock  kernel.Clock
}

func NewGetOrderQueryHandler(reader ports.OrderReader, clock kernel.Clock) GetOrderQueryHandler {
	return GetOrderQueryHandler{reader: reader, clock: clock}
}

// Handle resolves pending time-driven steps in memory; nothing is stored.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	stored, err := h.reader.Get(ctx, query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	now := h.clock.Now()
	resp := GetOrderQueryResponse{Order: order.Resolve(stored, now)}
	if status, ok := order.EvaluateSLA(stored, now); ok {
		resp.SLA = &status
	}
	return resp, nil
}
