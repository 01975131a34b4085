package commands

import (
	"errors"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/pkg/guard"
)

var ErrClaimOrderCommandIsNotConstructed = errors.New(
	"ClaimOrderCommand must be created via NewClaimOrderCommand constructor",
)

// ClaimOrderCommand asks for an order on the job board for one tailor.
type ClaimOrderCommand struct {
	orderID  kernel.OrderID
	tailorID kernel.ActorID

	guard guard.ConstructorGuard
}

func NewClaimOrderCommand(orderID, tailorID string) (ClaimOrderCommand, error) {
	id, idErr := kernel.ParseOrderID(orderID)
	tailor, tailorErr := kernel.NewActorID(tailorID)
	if err := errors.Join(idErr, tailorErr); err != nil {
		return ClaimOrderCommand{}, err
	}

	return ClaimOrderCommand{
		orderID:  id,
		tailorID: tailor,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c ClaimOrderCommand) Validate() error {
	return c.guard.Validate(ErrClaimOrderCommandIsNotConstructed)
}

func (c ClaimOrderCommand) OrderID() kernel.OrderID { return c.orderID }

func (c ClaimOrderCommand) TailorID() kernel.ActorID { return c.tailorID }
