package queries

import (
	"errors"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery asks for the current status of one order.
//
// Example:
//
//	query, err := NewGetOrderQuery("SDS-20260101-0001-A")
//	if err != nil {
//	    return err
//	}
//	status, err := handler.Handle(ctx, query)
//	fmt.Println(status.Order.State(), status.SLA.Overdue)
type GetOrderQuery struct {
	orderID kernel.OrderID
	guard   guard.ConstructorGuard
}

func NewGetOrderQuery(orderID string) (GetOrderQuery, error) {
	id, err := kernel.ParseOrderID(orderID)
	if err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: id, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.OrderID {
	return q.orderID
}

// GetOrderQueryResponse is the effective order. SLA is nil when the state
// is not time-bounded.
type GetOrderQueryResponse struct {
	Order *order.Order
	SLA   *order.SLAStatus
}
