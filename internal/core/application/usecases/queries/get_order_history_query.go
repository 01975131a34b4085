package queries

import (
	"errors"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/pkg/guard"
)

var ErrGetOrderHistoryQueryIsNotConstructed = errors.New(
	"GetOrderHistoryQuery must be created via NewGetOrderHistoryQuery constructor",
)

// GetOrderHistoryQuery asks for the audit trail of one order.
type GetOrderHistoryQuery struct {
	orderID kernel.OrderID
	guard   guard.ConstructorGuard
}

func NewGetOrderHistoryQuery(orderID string) (GetOrderHistoryQuery, error) {
	id, err := kernel.ParseOrderID(orderID)
	if err != nil {
		return GetOrderHistoryQuery{}, err
	}
	return GetOrderHistoryQuery{orderID: id, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderHistoryQueryIsNotConstructed)
}

func (q GetOrderHistoryQuery) OrderID() kernel.OrderID {
	return q.orderID
}
