package order

import (
	"fmt"
	"strings"

	"patternfactory/internal/pkg/errs"
)

// Priority orders the tailor job board; rush work is offered first.
type Priority int

const (
	PriorityUnknown Priority = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityRush
)

func getPriorityStrings() map[Priority]string {
	return map[Priority]string{
		PriorityLow:    "low",
		PriorityNormal: "normal",
		PriorityHigh:   "high",
		PriorityRush:   "rush",
	}
}

func ParsePriority(raw string) (Priority, error) {
	if raw == "" {
		return PriorityNormal, nil
	}
	for p, s := range getPriorityStrings() {
		if strings.EqualFold(s, raw) {
			return p, nil
		}
	}
	return PriorityUnknown, errs.NewValueIsInvalidErrorWithCause("priority", fmt.Errorf("%q is not a valid priority", raw))
}

func (p Priority) Validate() error {
	if _, ok := getPriorityStrings()[p]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("priority", fmt.Errorf("%d is not a valid priority", p))
	}
	return nil
}

func (p Priority) String() string {
	if s, ok := getPriorityStrings()[p]; ok {
		return s
	}
	return "unknown"
}

// Rank is higher for more urgent work.
func (p Priority) Rank() int {
	return int(p)
}
