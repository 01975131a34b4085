package queries

import (
	"context"
	"slices"

	"patternfactory/internal/core/domain/model/order"
)

type GetSLATableQueryHandler struct{}

func NewGetSLATableQueryHandler() GetSLATableQueryHandler {
	return GetSLATableQueryHandler{}
}

// Handle returns the SLA table in lifecycle order.
func (h GetSLATableQueryHandler) Handle(_ context.Context, query GetSLATableQuery) ([]order.SLA, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return slices.Collect(order.SLAs()), nil
}
