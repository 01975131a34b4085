package order

import (
	"time"

	"patternfactory/internal/core/domain/model/kernel"
)

// Transition is one entry of an order's audit history.
type Transition struct {
	ID        kernel.EventID
	OrderID   kernel.OrderID
	From      State
	To        State
	Trigger   Trigger
	Actor     kernel.ActorID
	At        time.Time
	Automatic bool
}

func newTransition(id kernel.OrderID, from, to State, trigger Trigger, actor kernel.ActorID, at time.Time) Transition {
	if actor.IsZero() {
		actor = kernel.SystemActor
	}
	return Transition{
		ID:        kernel.NewEventID(),
		OrderID:   id,
		From:      from,
		To:        to,
		Trigger:   trigger,
		Actor:     actor,
		At:        at,
		Automatic: trigger.IsAutomatic(),
	}
}
