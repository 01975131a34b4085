package commands

import (
	"errors"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/pkg/guard"
)

var ErrFileDisputeCommandIsNotConstructed = errors.New(
	"FileDisputeCommand must be created via NewFileDisputeCommand constructor",
)

// FileDisputeCommand contests a QC failure on behalf of the producing tailor.
type FileDisputeCommand struct {
	orderID  kernel.OrderID
	tailorID kernel.ActorID
	reason   string

	guard guard.ConstructorGuard
}

// NewFileDisputeCommand checks identifiers only; the reason is validated
// with the dispute itself so that a blank one reports as an invalid payload.
func NewFileDisputeCommand(orderID, tailorID, reason string) (FileDisputeCommand, error) {
	id, idErr := kernel.ParseOrderID(orderID)
	tailor, tailorErr := kernel.NewActorID(tailorID)
	if err := errors.Join(idErr, tailorErr); err != nil {
		return FileDisputeCommand{}, err
	}

	return FileDisputeCommand{
		orderID:  id,
		tailorID: tailor,
		reason:   reason,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c FileDisputeCommand) Validate() error {
	return c.guard.Validate(ErrFileDisputeCommandIsNotConstructed)
}

func (c FileDisputeCommand) OrderID() kernel.OrderID { return c.orderID }

func (c FileDisputeCommand) TailorID() kernel.ActorID { return c.tailorID }

func (c FileDisputeCommand) Reason() string { return c.reason }
