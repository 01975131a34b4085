package commands

import (
	"errors"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/pkg/guard"
)

var ErrApplyTriggerCommandIsNotConstructed = errors.New(
	"ApplyTriggerCommand must be created via NewApplyTriggerCommand constructor",
)

// ApplyTriggerCommand is the generic lifecycle call: apply trigger to an
// order on behalf of actor, with the payload the trigger requires.
type ApplyTriggerCommand struct {
	orderID kernel.OrderID
	trigger order.Trigger
	actor   kernel.ActorID
	payload order.Payload

	guard guard.ConstructorGuard
}

// NewApplyTriggerCommand parses the call. An empty actor means the system.
// A nil payload stands for order.NoPayload.
func NewApplyTriggerCommand(orderID, trigger, actor string, payload order.Payload) (ApplyTriggerCommand, error) {
	cmd := ApplyTriggerCommand{
		payload: payload,
		guard:   guard.NewConstructorGuard(),
	}
	if cmd.payload == nil {
		cmd.payload = order.NoPayload{}
	}

	var errList []error
	id, err := kernel.ParseOrderID(orderID)
	errList = append(errList, err)
	cmd.orderID = id

	t, err := order.ParseTrigger(trigger)
	errList = append(errList, err)
	cmd.trigger = t

	cmd.actor = kernel.SystemActor
	if actor != "" {
		a, err := kernel.NewActorID(actor)
		errList = append(errList, err)
		cmd.actor = a
	}

	if err = errors.Join(errList...); err != nil {
		return ApplyTriggerCommand{}, err
	}
	return cmd, nil
}

func (c ApplyTriggerCommand) Validate() error {
	return c.guard.Validate(ErrApplyTriggerCommandIsNotConstructed)
}

func (c ApplyTriggerCommand) OrderID() kernel.OrderID { return c.orderID }

func (c ApplyTriggerCommand) Trigger() order.Trigger { return c.trigger }

func (c ApplyTriggerCommand) Actor() kernel.ActorID { return c.actor }

func (c ApplyTriggerCommand) Payload() order.Payload { return c.payload }
