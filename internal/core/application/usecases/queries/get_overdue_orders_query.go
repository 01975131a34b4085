package queries

import (
	"errors"

	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/pkg/guard"
)

var ErrGetOverdueOrdersQueryIsNotConstructed = errors.New(
	"GetOverdueOrdersQuery must be created via NewGetOverdueOrdersQuery constructor",
)

// GetOverdueOrdersQuery lists orders that stayed in their state longer than
// the state's SLA maximum.
type GetOverdueOrdersQuery struct {
	guard guard.ConstructorGuard
}

func NewGetOverdueOrdersQuery() GetOverdueOrdersQuery {
	return GetOverdueOrdersQuery{guard: guard.NewConstructorGuard()}
}

func (q GetOverdueOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetOverdueOrdersQueryIsNotConstructed)
}

type GetOverdueOrdersQueryResponse struct {
	Order  *order.Order
	Status order.SLAStatus
}
