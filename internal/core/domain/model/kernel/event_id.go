package kernel

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrEventIDIsNotConstructed = errors.New("event id must be created via NewEventID or EventIDFromString")

// EventID identifies one recorded transition in an order's history.
type EventID struct {
	id uuid.UUID
}

func NewEventID() EventID {
	return EventID{id: uuid.New()}
}

func EventIDFromString(s string) (EventID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return EventID{}, fmt.Errorf("invalid event id format: %w", err)
	}
	return EventID{id: id}, nil
}

func EventIDFromUUID(id uuid.UUID) (EventID, error) {
	e := EventID{id: id}
	if err := e.Validate(); err != nil {
		return EventID{}, err
	}
	return e, nil
}

func (e EventID) String() string {
	return e.id.String()
}

func (e EventID) UUID() uuid.UUID {
	return e.id
}

func (e EventID) Validate() error {
	if e.id == uuid.Nil {
		return ErrEventIDIsNotConstructed
	}
	return nil
}
