package kernel

import (
	"fmt"
	"strings"

	"patternfactory/internal/pkg/errs"
)

const maxActorIDLength = 128

var ErrActorIDIsNotConstructed = errs.NewValueIsRequiredError("actor id must be created via NewActorID")

// ActorID identifies whoever drives a transition: a tailor, an inspector, a
// courier, an integration or the system itself.
type ActorID struct {
	value string
}

// SystemActor is recorded on automatic transitions.
var SystemActor = ActorID{value: "system"}

func NewActorID(raw string) (ActorID, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ActorID{}, errs.NewValueIsRequiredError("actor id")
	}
	if len(value) > maxActorIDLength {
		return ActorID{}, errs.NewValueIsOutOfRangeError("actor id length", len(value), 1, maxActorIDLength)
	}
	if strings.ContainsAny(value, "\r\n\t") {
		return ActorID{}, errs.NewValueIsInvalidErrorWithCause("actor id", fmt.Errorf("%q contains control characters", value))
	}
	return ActorID{value: value}, nil
}

func MustNewActorID(raw string) ActorID {
	id, err := NewActorID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

func (a ActorID) String() string {
	return a.value
}

func (a ActorID) IsZero() bool {
	return a.value == ""
}

func (a ActorID) IsEqual(other ActorID) bool {
	return a.value == other.value
}

func (a ActorID) Validate() error {
	if a.value == "" {
		return ErrActorIDIsNotConstructed
	}
	return nil
}
