package queries

import (
	"cmp"
	"context"
	"slices"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/ports"
)

type GetOverdueOrdersQueryHandler struct {
	reader ports.OrderReader
	clock  kernel.Clock
}

func NewGetOverdueOrdersQueryHandler(reader ports.OrderReader, clock kernel.Clock) GetOverdueOrdersQueryHandler {
	return GetOverdueOrdersQueryHandler{reader: reader, clock: clock}
}

// Handle returns overdue orders, the most overdue first.
func (h GetOverdueOrdersQueryHandler) Handle(ctx context.Context, query GetOverdueOrdersQuery) ([]GetOverdueOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	candidates, err := h.reader.ListByState(ctx, monitoredStates()...)
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	overdue := make([]GetOverdueOrdersQueryResponse, 0)
	for _, stored := range candidates {
		status, ok := order.EvaluateSLA(stored, now)
		if !ok || !status.Overdue {
			continue
		}
		overdue = append(overdue, GetOverdueOrdersQueryResponse{
			Order:  order.Resolve(stored, now),
			Status: status,
		})
	}

	slices.SortStableFunc(overdue, func(a, b GetOverdueOrdersQueryResponse) int {
		if c := a.Status.DueAt.Compare(b.Status.DueAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Order.ID().String(), b.Order.ID().String())
	})
	return overdue, nil
}

// monitoredStates are the stored states that can be overdue at some point.
// S17 is included because it resolves into the time-bounded S17a.
func monitoredStates() []order.State {
	states := []order.State{order.QCFail}
	for sla := range order.SLAs() {
		states = append(states, sla.State)
	}
	return states
}
