package commands

import (
	"errors"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/pkg/guard"
)

var ErrReinspectOrderCommandIsNotConstructed = errors.New(
	"ReinspectOrderCommand must be created via NewReinspectOrderCommand constructor",
)

// ReinspectOrderCommand records the verdict on a disputed QC failure.
type ReinspectOrderCommand struct {
	orderID     kernel.OrderID
	verdict     order.ReinspectionVerdict
	inspectorID kernel.ActorID

	guard guard.ConstructorGuard
}

func NewReinspectOrderCommand(orderID, verdict, inspectorID string) (ReinspectOrderCommand, error) {
	id, idErr := kernel.ParseOrderID(orderID)
	v, verdictErr := order.ParseReinspectionVerdict(verdict)
	inspector, inspectorErr := kernel.NewActorID(inspectorID)
	if err := errors.Join(idErr, verdictErr, inspectorErr); err != nil {
		return ReinspectOrderCommand{}, err
	}

	return ReinspectOrderCommand{
		orderID:     id,
		verdict:     v,
		inspectorID: inspector,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c ReinspectOrderCommand) Validate() error {
	return c.guard.Validate(ErrReinspectOrderCommandIsNotConstructed)
}

func (c ReinspectOrderCommand) OrderID() kernel.OrderID { return c.orderID }

func (c ReinspectOrderCommand) Verdict() order.ReinspectionVerdict { return c.verdict }

func (c ReinspectOrderCommand) InspectorID() kernel.ActorID { return c.inspectorID }
