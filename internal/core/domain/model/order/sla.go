package order

import (
	"iter"
	"time"
)

// SLA bounds how long an order may stay in a state. Target is the operating
// goal; Max is the breach threshold.
type SLA struct {
	State  State
	Max    time.Duration
	Target time.Duration
}

var slaTable = []SLA{
	{State: Processing, Max: 5 * time.Minute, Target: 3 * time.Minute},
	{State: Cutting, Max: 30 * time.Minute, Target: 20 * time.Minute},
	{State: AvailableForTailors, Max: 30 * time.Minute, Target: 15 * time.Minute},
	{State: Claimed, Max: 15 * time.Minute, Target: 10 * time.Minute},
	{State: Dispatching, Max: time.Hour, Target: 30 * time.Minute},
	{State: InTransitToTailor, Max: 4 * time.Hour, Target: 2 * time.Hour},
	{State: WithTailor, Max: 2 * time.Hour, Target: time.Hour},
	{State: InProduction, Max: 8 * time.Hour, Target: 6 * time.Hour},
	{State: QCInProgress, Max: 15 * time.Minute, Target: 10 * time.Minute},
	{State: QCFailPendingDispute, Max: DisputeWindow, Target: DisputeWindow},
	{State: DisputedAwaitingReinspection, Max: 24 * time.Hour, Target: 12 * time.Hour},
}

// SLAs yields the SLA table in lifecycle order.
func SLAs() iter.Seq[SLA] {
	return func(yield func(SLA) bool) {
		for _, s := range slaTable {
			if !yield(s) {
				return
			}
		}
	}
}

// SLAFor returns the SLA of state, if the state is time-bounded.
func SLAFor(state State) (SLA, bool) {
	for s := range SLAs() {
		if s.State == state {
			return s, true
		}
	}
	return SLA{}, false
}

// SLAStatus is the evaluation of an order against the SLA of its state.
type SLAStatus struct {
	SLA
	Elapsed    time.Duration
	OverTarget bool
	Overdue    bool
	DueAt      time.Time
}

// EvaluateSLA measures how long the order has been in its effective state at
// now. ok is false for states without an SLA.
func EvaluateSLA(o *Order, now time.Time) (status SLAStatus, ok bool) {
	effective := Resolve(o, now)
	sla, ok := SLAFor(effective.state)
	if !ok {
		return SLAStatus{}, false
	}

	elapsed := now.Sub(effective.stateEnteredAt)
	return SLAStatus{
		SLA:        sla,
		Elapsed:    elapsed,
		OverTarget: elapsed > sla.Target,
		Overdue:    elapsed > sla.Max,
		DueAt:      effective.stateEnteredAt.Add(sla.Max),
	}, true
}
