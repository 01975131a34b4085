package commands

import (
	"errors"

	"patternfactory/internal/pkg/guard"
)

var ErrSweepDisputeWindowsCommandIsNotConstructed = errors.New(
	"SweepDisputeWindowsCommand must be created via NewSweepDisputeWindowsCommand constructor",
)

// SweepDisputeWindowsCommand stores the pending time-driven steps of the
// QC failure sub-flow for every affected order.
type SweepDisputeWindowsCommand struct {
	guard guard.ConstructorGuard
}

func NewSweepDisputeWindowsCommand() SweepDisputeWindowsCommand {
	return SweepDisputeWindowsCommand{
		guard: guard.NewConstructorGuard(),
	}
}

func (c SweepDisputeWindowsCommand) Validate() error {
	return c.guard.Validate(ErrSweepDisputeWindowsCommandIsNotConstructed)
}
